// Package refdata decodes the CSV exchange format of ingredient and tag reference data.
//
// Ingredients are rows of (name, measurement_unit); tags are rows of (name, color, slug).
// A leading header row naming those columns is skipped. Rows repeated within one
// file are collapsed so the import stays idempotent.
package refdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
)

var (
	slugRe  = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	colorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// ReadIngredients decodes ingredient rows.
func ReadIngredients(r io.Reader) ([]model.Ingredient, error) {
	var out []model.Ingredient
	seen := map[[2]string]struct{}{}
	err := each(r, []string{"name", "measurement_unit"}, func(line int, rec []string) error {
		in := model.Ingredient{Name: rec[0], MeasurementUnit: rec[1]}
		if in.Name == "" || in.MeasurementUnit == "" {
			return rowErr(line, "name and measurement_unit are required")
		}
		key := [2]string{in.Name, in.MeasurementUnit}
		if _, ok := seen[key]; ok {
			return nil
		}
		seen[key] = struct{}{}
		out = append(out, in)
		return nil
	})
	return out, err
}

// ReadTags decodes tag rows.
func ReadTags(r io.Reader) ([]model.Tag, error) {
	var out []model.Tag
	seen := map[string]struct{}{}
	err := each(r, []string{"name", "color", "slug"}, func(line int, rec []string) error {
		t := model.Tag{Name: rec[0], Color: strings.ToUpper(rec[1]), Slug: rec[2]}
		switch {
		case t.Name == "":
			return rowErr(line, "name is required")
		case !colorRe.MatchString(t.Color):
			return rowErr(line, fmt.Sprintf("color %q is not #RRGGBB", rec[1]))
		case !slugRe.MatchString(t.Slug):
			return rowErr(line, fmt.Sprintf("slug %q has characters outside [-a-zA-Z0-9_]", t.Slug))
		}
		if _, ok := seen[t.Slug]; ok {
			return nil
		}
		seen[t.Slug] = struct{}{}
		out = append(out, t)
		return nil
	})
	return out, err
}

func rowErr(line int, msg string) error {
	return fmt.Errorf("line %d: %s: %w", line, msg, errs.ErrInvalidInput)
}

// each reads records with exactly len(header) fields, trims them and calls fn.
func each(r io.Reader, header []string, fn func(line int, rec []string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	cr.TrimLeadingSpace = true

	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return fmt.Errorf("line %d: %v: %w", pe.Line, pe.Err, errs.ErrInvalidInput)
			}
			return err
		}
		line, _ := cr.FieldPos(0)
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		if first {
			first = false
			if isHeader(rec, header) {
				continue
			}
		}
		if err := fn(line, rec); err != nil {
			return err
		}
	}
}

func isHeader(rec, header []string) bool {
	for i, h := range header {
		if !strings.EqualFold(rec[i], h) {
			return false
		}
	}
	return true
}
