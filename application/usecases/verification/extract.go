package verification_usecases

import (
	"context"
	"image"
	"regexp"
	"sort"
	"strings"

	"ekyc.io/application/fieldcompare"
	"ekyc.io/application/mrz"
	"ekyc.io/infrastructure/layout"
	"ekyc.io/infrastructure/logger"
	"ekyc.io/infrastructure/ocr"
	"ekyc.io/infrastructure/workerpool"
)

// Extraction is what was read from one document side.
type Extraction struct {
	Model      string              `json:"model"`
	Fields     fieldcompare.Fields `json:"fields"`
	Confidence float64             `json:"confidence"`
	Lines      []ocr.Line          `json:"lines"`
	MRZ        *mrz.Passport       `json:"mrz,omitempty"`
	Skipped    *string             `json:"skipped,omitempty"`
}

type fieldSource struct {
	field     string
	languages []string
	// part orders labels that make up one field, such as given name then surname
	part int
}

var (
	arabicOnly  = []string{ocr.Arabic}
	englishOnly = []string{ocr.English}
	bothScripts = []string{ocr.Arabic, ocr.English}
)

const mrzLabel = "MRZ"

var layoutLabels = map[string]map[string]fieldSource{
	layout.ModelIDFront: {
		"name":      {field: fieldcompare.FieldNameArabic, languages: arabicOnly},
		"DOB":       {field: fieldcompare.FieldDateOfBirth, languages: englishOnly},
		"unique_id": {field: fieldcompare.FieldIDNumber, languages: englishOnly},
		"POB":       {field: fieldcompare.FieldPlaceOfBirth, languages: arabicOnly},
	},
	layout.ModelIDBack: {
		"issue_date":  {field: fieldcompare.FieldIssuanceDate, languages: englishOnly},
		"expiry_data": {field: fieldcompare.FieldExpiryDate, languages: englishOnly},
		"unique_id":   {field: fieldcompare.FieldIDNumber, languages: englishOnly},
	},
	layout.ModelPassport: {
		"passport_no":      {field: fieldcompare.FieldPassportNumber, languages: englishOnly},
		"DOB":              {field: fieldcompare.FieldDateOfBirth, languages: englishOnly},
		"POB":              {field: fieldcompare.FieldPlaceOfBirth, languages: arabicOnly},
		"expiry_date":      {field: fieldcompare.FieldExpiryDate, languages: englishOnly},
		"Issue_date":       {field: fieldcompare.FieldIssuanceDate, languages: englishOnly},
		"GivenName_eng":    {field: fieldcompare.FieldNameEnglish, languages: englishOnly},
		"surname_eng":      {field: fieldcompare.FieldNameEnglish, languages: englishOnly, part: 1},
		"GivenName_arabic": {field: fieldcompare.FieldNameArabic, languages: arabicOnly},
		"surname_arabic":   {field: fieldcompare.FieldNameArabic, languages: arabicOnly, part: 1},
		mrzLabel:           {languages: englishOnly},
	},
}

var (
	datePattern  = regexp.MustCompile(`\d{1,4}[-/.]\d{1,2}[-/.]\d{1,4}`)
	alphanumeric = regexp.MustCompile(`[^A-Z0-9]`)
)

// Extractor reads document fields with the layout detector and OCR. Without a
// detector the whole side is recognised and only identifiers are extracted.
// Every collaborator call takes a pool slot and the pool's per-call timeout.
type Extractor struct {
	OCR    ocr.TextRecognizer
	Layout layout.FieldDetector
	Pool   *workerpool.Pool
}

func (x *Extractor) recognize(ctx context.Context, name string, img image.Image, languages []string) ([]ocr.Line, error) {
	return workerpool.Submit(ctx, x.Pool, name, func(ctx context.Context) ([]ocr.Line, error) {
		return x.OCR.Recognize(ctx, img, languages)
	})
}

type fieldPart struct {
	part int
	text string
}

// Extract never fails the attempt: collaborator errors are reported in Skipped.
func (x *Extractor) Extract(ctx context.Context, img image.Image, model string) Extraction {
	result := Extraction{Model: model, Lines: []ocr.Line{}}
	if x == nil || x.OCR == nil {
		reason := "ocr unavailable"
		result.Skipped = &reason
		return result
	}

	regions := x.detect(ctx, img, model)
	labels := layoutLabels[model]
	found := []string{}
	for label := range regions {
		if _, ok := labels[label]; ok {
			found = append(found, label)
		}
	}
	sort.Strings(found)

	if len(found) == 0 {
		lines, err := x.recognize(ctx, "ocr:"+model, img, bothScripts)
		if err != nil {
			reason := err.Error()
			result.Skipped = &reason
			return result
		}
		result.Lines = lines
	} else {
		parts := map[string][]fieldPart{}
		failures := 0
		for _, label := range found {
			src := labels[label]
			lines, err := x.recognize(ctx, "ocr:"+model+":"+label, layout.Crop(img, regions[label]), src.languages)
			if err != nil {
				failures++
				logger.Warning("field recognition failed", logger.LoggerOptions{
					Key:  "label",
					Data: label,
				}, logger.LoggerOptions{
					Key:  "error",
					Data: err,
				})
				continue
			}
			for i := range lines {
				lines[i].Label = label
			}
			result.Lines = append(result.Lines, lines...)
			if src.field == "" {
				continue
			}
			if value := fieldValue(src.field, ocr.Join(lines)); value != "" {
				parts[src.field] = append(parts[src.field], fieldPart{part: src.part, text: value})
			}
		}
		if failures == len(found) {
			reason := "ocr failed for every detected field"
			result.Skipped = &reason
			return result
		}
		for field, values := range parts {
			sort.Slice(values, func(i, j int) bool { return values[i].part < values[j].part })
			texts := make([]string, len(values))
			for i, v := range values {
				texts[i] = v.text
			}
			joined := strings.Join(texts, " ")
			result.Fields.Set(field, &joined)
		}
	}

	if model != layout.ModelPassport && result.Fields.Get(fieldcompare.FieldIDNumber) == nil {
		result.Fields.IDNumber = ocr.FindIDNumber(result.Lines)
	}
	if model == layout.ModelPassport {
		result.MRZ = readMRZ(result.Lines)
		fillFromMRZ(&result.Fields, result.MRZ)
	}
	result.Confidence = ocr.MeanConfidence(result.Lines)
	return result
}

func (x *Extractor) detect(ctx context.Context, img image.Image, model string) map[string]layout.Region {
	if x.Layout == nil {
		return nil
	}
	regions, err := workerpool.Submit(ctx, x.Pool, "layout:"+model, func(ctx context.Context) ([]layout.Region, error) {
		return x.Layout.Detect(ctx, img, model)
	})
	if err != nil {
		logger.Warning("layout detection failed, recognising the whole side", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil
	}
	return layout.Best(regions, img.Bounds())
}

// fieldValue cleans recognised text for one field; "" means nothing usable.
func fieldValue(field string, text string) string {
	text = strings.TrimSpace(text)
	switch field {
	case fieldcompare.FieldIDNumber:
		if d := ocr.Digits(text); len(d) >= 8 {
			return d
		}
		return ""
	case fieldcompare.FieldPassportNumber:
		return alphanumeric.ReplaceAllString(strings.ToUpper(text), "")
	case fieldcompare.FieldNameArabic, fieldcompare.FieldPlaceOfBirth:
		if ocr.HasArabic(text) {
			return text
		}
		return ""
	case fieldcompare.FieldDateOfBirth, fieldcompare.FieldIssuanceDate, fieldcompare.FieldExpiryDate:
		if m := datePattern.FindString(text); m != "" {
			return m
		}
		return text
	}
	return text
}

func readMRZ(lines []ocr.Line) *mrz.Passport {
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	first, second, ok := mrz.Find(texts)
	if !ok {
		return nil
	}
	passport, err := mrz.Parse(first, second)
	if err != nil {
		return nil
	}
	return &passport
}

// fillFromMRZ lets a zone with valid check digits win over the printed fields
// and otherwise only fills blanks.
func fillFromMRZ(fields *fieldcompare.Fields, zone *mrz.Passport) {
	if zone == nil {
		return
	}
	set := func(name string, value *string) {
		if value == nil || *value == "" {
			return
		}
		if zone.ChecksumsValid || fields.Get(name) == nil {
			fields.Set(name, value)
		}
	}
	number, name := zone.PassportNumber, zone.FullName()
	set(fieldcompare.FieldPassportNumber, &number)
	set(fieldcompare.FieldNameEnglish, &name)
	set(fieldcompare.FieldDateOfBirth, zone.DateOfBirth)
	set(fieldcompare.FieldExpiryDate, zone.ExpiryDate)
	set(fieldcompare.FieldGender, zone.Gender)
}

// Merge lays the back over the front, keeping every field the front already has.
func Merge(front Extraction, back *Extraction) fieldcompare.Fields {
	merged := front.Fields
	if back == nil {
		return merged
	}
	for _, cfg := range fieldcompare.DefaultFields() {
		if merged.Get(cfg.Name) == nil {
			merged.Set(cfg.Name, back.Fields.Get(cfg.Name))
		}
	}
	return merged
}
