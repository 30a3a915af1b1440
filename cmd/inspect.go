package cmd

import (
	"encoding/json"
	"image"
	"io"
	"os"

	"ekyc.io/application/authenticity"
	"ekyc.io/application/fieldcompare"
	"ekyc.io/application/liveness"
	"ekyc.io/application/services"
	verification_usecases "ekyc.io/application/usecases/verification"
	"ekyc.io/infrastructure/imageloader"
	startup "ekyc.io/infrastructure/startUp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the signals computed for local images",
	Long: `Evaluate document and selfie images from disk without any database.

The compiled default policy is used when a full verification is requested.

Examples:
  # Document signals for an ID card
  ekyc inspect --front front.jpg --back back.jpg

  # Add selfie liveness
  ekyc inspect --front front.jpg --selfie selfie.jpg

  # Full attempt with declared fields
  ekyc inspect --front front.jpg --back back.jpg --selfie selfie.jpg --declared declared.json`,
	RunE: runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.String("front", "", "front side or passport data page")
	f.String("back", "", "back side of a national ID")
	f.String("selfie", "", "selfie image")
	f.String("type", string(authenticity.YemenNationalID), "yemen_national_id or yemen_passport")
	f.String("declared", "", "JSON file of declared fields; runs a full verification")
	_ = inspectCmd.MarkFlagRequired("front")
	rootCmd.AddCommand(inspectCmd)
}

type inspectReport struct {
	Document     authenticity.DocumentResult   `json:"document"`
	Liveness     *liveness.Verdict             `json:"liveness,omitempty"`
	Verification *verification_usecases.Result `json:"verification,omitempty"`
}

func loadOptional(field string, path string) (image.Image, error) {
	if path == "" {
		return nil, nil
	}
	return imageloader.Load(field, path)
}

func runInspect(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	frontPath, _ := f.GetString("front")
	backPath, _ := f.GetString("back")
	selfiePath, _ := f.GetString("selfie")
	docType, _ := f.GetString("type")
	declaredPath, _ := f.GetString("declared")

	front, err := imageloader.Load("front", frontPath)
	if err != nil {
		return err
	}
	back, err := loadOptional("back", backPath)
	if err != nil {
		return err
	}
	selfie, err := loadOptional("selfie", selfiePath)
	if err != nil {
		return err
	}
	if err := startup.BuildEngines(cfg, nil); err != nil {
		return err
	}

	ctx := cmd.Context()
	report := inspectReport{}
	if declaredPath != "" {
		raw, err := os.ReadFile(declaredPath)
		if err != nil {
			return eris.Wrap(err, "read declared fields")
		}
		var declared fieldcompare.Fields
		if err := json.Unmarshal(raw, &declared); err != nil {
			return eris.Wrap(err, "decode declared fields")
		}
		result, err := services.Verifier.Verify(ctx, verification_usecases.Input{
			DocumentType: authenticity.DocumentType(docType),
			Front:        front,
			Back:         back,
			Selfie:       selfie,
			Declared:     declared,
		})
		if err != nil {
			return err
		}
		report.Document = result.Document
		report.Liveness = result.Liveness
		report.Verification = result
		return writeJSON(cmd.OutOrStdout(), report)
	}

	report.Document, err = services.Documents.EvaluateDocument(ctx, front, back, authenticity.DocumentType(docType))
	if err != nil {
		return err
	}
	if selfie != nil {
		verdict, err := services.Liveness.Evaluate(ctx, selfie, liveness.Options{})
		if err != nil {
			return err
		}
		report.Liveness = &verdict
	}
	return writeJSON(cmd.OutOrStdout(), report)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
