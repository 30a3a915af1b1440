package mrz

import (
	"testing"

	apperrors "ekyc.io/application/appErrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	line1 = "P<YEMALARABI<<FAWAZ<HADI<MOHAMMED<<<<<<<<<<<"
	line2 = "10381272<6YEM8801018M2708218<<<<<<<<<<<<<<08"
)

func TestParse(t *testing.T) {
	p, err := Parse(line1, line2)
	require.NoError(t, err)

	assert.Equal(t, "P", p.DocumentCode)
	assert.Equal(t, "YEM", p.IssuingState)
	assert.Equal(t, "ALARABI", p.Surname)
	assert.Equal(t, "FAWAZ HADI MOHAMMED", p.GivenNames)
	assert.Equal(t, "FAWAZ HADI MOHAMMED ALARABI", p.FullName())
	assert.Equal(t, "10381272", p.PassportNumber)
	assert.Equal(t, "YEM", p.Nationality)
	assert.Equal(t, "1988-01-01", *p.DateOfBirth)
	assert.Equal(t, "Male", *p.Gender)
	assert.Equal(t, "2027-08-21", *p.ExpiryDate)
	assert.True(t, p.ChecksumsValid)
}

func TestParseDetectsBadCheckDigit(t *testing.T) {
	tampered := "10381273<6YEM8801018M2708218<<<<<<<<<<<<<<08"
	p, err := Parse(line1, tampered)
	require.NoError(t, err)
	assert.False(t, p.ChecksumsValid)
	assert.Equal(t, "10381273", p.PassportNumber)
}

func TestParseRejectsMalformed(t *testing.T) {
	_, err := Parse("P<YEM", line2)
	assert.True(t, apperrors.IsInputError(err))

	_, err = Parse("I"+line1[1:], line2)
	assert.True(t, apperrors.IsInputError(err))
}

func TestCheckDigit(t *testing.T) {
	assert.Equal(t, byte('6'), CheckDigit("10381272<"))
	assert.Equal(t, byte('8'), CheckDigit("880101"))
	assert.Equal(t, byte('0'), CheckDigit("<<<<<<<<<<<<<<"))
}

func TestDate(t *testing.T) {
	assert.Equal(t, "2040-12-31", *Date("401231"))
	assert.Equal(t, "1941-01-01", *Date("410101"))
	assert.Nil(t, Date("881301"))
	assert.Nil(t, Date("8801"))
}

func TestFind(t *testing.T) {
	first, second, ok := Find([]string{
		"REPUBLIC OF YEMEN",
		"p<yemalarabi<<fawaz<hadi<mohammed<<<<<<<<<<<",
		"10381272<6YEM 8801018M2708218<<<<<<<<<<<<<<08",
	})
	require.True(t, ok)
	assert.Equal(t, line1, first)
	assert.Equal(t, line2, second)

	_, _, ok = Find([]string{"no zone here"})
	assert.False(t, ok)
}
