// Package mrz reads the two-line machine readable zone printed on passport
// data pages (ICAO 9303 TD3).
package mrz

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "ekyc.io/application/appErrors"
)

const lineLength = 44

type Passport struct {
	DocumentCode   string  `json:"document_code" bson:"documentCode"`
	IssuingState   string  `json:"issuing_state" bson:"issuingState"`
	Surname        string  `json:"surname" bson:"surname"`
	GivenNames     string  `json:"given_names" bson:"givenNames"`
	PassportNumber string  `json:"passport_number" bson:"passportNumber"`
	Nationality    string  `json:"nationality" bson:"nationality"`
	DateOfBirth    *string `json:"date_of_birth" bson:"dateOfBirth"`
	Gender         *string `json:"gender" bson:"gender"`
	ExpiryDate     *string `json:"expiry_date" bson:"expiryDate"`
	ChecksumsValid bool    `json:"checksums_valid" bson:"checksumsValid"`
}

// FullName is the given names followed by the surname.
func (p Passport) FullName() string {
	return strings.TrimSpace(p.GivenNames + " " + p.Surname)
}

func charValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return 0
}

// CheckDigit weights characters 7, 3, 1 in turn; filler counts as zero.
func CheckDigit(data string) byte {
	weights := [3]int{7, 3, 1}
	total := 0
	for i := 0; i < len(data); i++ {
		total += charValue(data[i]) * weights[i%3]
	}
	return byte('0' + total%10)
}

// Date converts YYMMDD, placing 00-40 in the 2000s.
func Date(raw string) *string {
	if len(raw) != 6 {
		return nil
	}
	yy, err := strconv.Atoi(raw[:2])
	if err != nil {
		return nil
	}
	century := 1900
	if yy <= 40 {
		century = 2000
	}
	parsed, err := time.Parse("20060102", fmt.Sprintf("%d%s", century+yy, raw[2:]))
	if err != nil {
		return nil
	}
	formatted := parsed.Format("2006-01-02")
	return &formatted
}

func names(field string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(field, "<", " ")), " ")
}

// Normalise uppercases a recognised line, drops spaces and maps the usual
// OCR confusions for the filler character.
func Normalise(line string) string {
	line = strings.ToUpper(strings.TrimSpace(line))
	line = strings.NewReplacer(" ", "", "«", "<<", "‹", "<", "(", "<", "{", "<").Replace(line)
	return line
}

// Find returns the first consecutive pair of TD3 lines among texts.
func Find(texts []string) (string, string, bool) {
	for i := 0; i+1 < len(texts); i++ {
		first, second := Normalise(texts[i]), Normalise(texts[i+1])
		if len(first) == lineLength && len(second) == lineLength && strings.HasPrefix(first, "P") {
			return first, second, true
		}
	}
	return "", "", false
}

// Parse decodes both lines and validates every check digit.
func Parse(line1, line2 string) (Passport, error) {
	if len(line1) != lineLength || len(line2) != lineLength {
		return Passport{}, apperrors.NewInputError("mrz", fmt.Sprintf("lines must be %d characters", lineLength))
	}
	if line1[0] != 'P' {
		return Passport{}, apperrors.NewInputError("mrz", "not a passport zone")
	}
	p := Passport{
		DocumentCode: strings.TrimRight(line1[:2], "<"),
		IssuingState: strings.TrimRight(line1[2:5], "<"),
	}
	nameParts := strings.SplitN(line1[5:], "<<", 2)
	p.Surname = names(nameParts[0])
	if len(nameParts) == 2 {
		p.GivenNames = names(nameParts[1])
	}

	p.PassportNumber = strings.TrimRight(line2[:9], "<")
	p.Nationality = strings.TrimRight(line2[10:13], "<")
	p.DateOfBirth = Date(line2[13:19])
	switch line2[20] {
	case 'M':
		p.Gender = ptr("Male")
	case 'F':
		p.Gender = ptr("Female")
	}
	p.ExpiryDate = Date(line2[21:27])

	composite := line2[0:10] + line2[13:20] + line2[21:43]
	p.ChecksumsValid = CheckDigit(line2[0:9]) == line2[9] &&
		CheckDigit(line2[13:19]) == line2[19] &&
		CheckDigit(line2[21:27]) == line2[27] &&
		CheckDigit(line2[28:42]) == line2[42] &&
		CheckDigit(composite) == line2[43]
	return p, nil
}

func ptr(s string) *string {
	return &s
}
