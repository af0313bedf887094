package etl

import (
	"math"
	"strings"
	"testing"

	"github.com/BartekS5/tmmigrate/pkg/models"
)

func TestValidateDocument(t *testing.T) {
	v := NewValidator()
	tr := newTestTransformer()
	crew := NewCrewIndex(95)

	valid := []interface{}{
		tr.Project(models.LegacyProject{Name: "ok"}),
		tr.CrewMember(models.LegacyEmployee{Name: "ok", Status: "active"}),
		tr.CrewLog(models.LegacyCrewLog{}, nil, crew),
		tr.TmTag(models.LegacyTmTag{MaterialEntries: []models.LegacyAmountEntry{{Total: 33.33}}}, tr.NewID(), crew),
		tr.Material(models.LegacyMaterial{TotalCost: ptr(100)}, nil),
	}
	for _, doc := range valid {
		if err := v.ValidateDocument(doc); err != nil {
			t.Errorf("%T: unexpected error %v", doc, err)
		}
	}

	badProject := tr.Project(models.LegacyProject{})
	badProject.Status = "deleted"

	badDay := tr.Project(models.LegacyProject{})
	badDay.BillingDay = 0

	nanLog := tr.CrewLog(models.LegacyCrewLog{}, nil, crew)
	nanLog.CostRate = math.NaN()

	badTag := tr.TmTag(models.LegacyTmTag{}, tr.NewID(), crew)
	badTag.TotalBill = 1

	unstamped := tr.Material(models.LegacyMaterial{}, nil)
	unstamped.MarkupPercent = 15

	cases := []struct {
		name string
		doc  interface{}
		want string
	}{
		{"project status", badProject, "invalid status"},
		{"billing day", badDay, "billing day"},
		{"nan rate", nanLog, "non-finite"},
		{"tag total", badTag, "totalBill"},
		{"material markup", unstamped, "markup"},
		{"unknown type", "text", "unsupported"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateDocument(tc.doc)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("got %v, want error containing %q", err, tc.want)
			}
		})
	}
}

func TestValidateDocument_LargeTagTotals(t *testing.T) {
	v := NewValidator()
	tr := newTestTransformer()

	tag := tr.TmTag(models.LegacyTmTag{}, tr.NewID(), NewCrewIndex(95))
	tag.TotalLaborBill = 9_876_543_210.17
	tag.TotalMaterialBill = 1_234_567_890.29
	tag.TotalExpense = 0.13
	// Off from the float sum by far more than 1e-6, but within rounding of
	// values this large.
	tag.TotalBill = tag.TotalLaborBill + tag.TotalMaterialBill + tag.TotalExpense + 4e-6

	if err := v.ValidateDocument(tag); err != nil {
		t.Fatalf("large totals rejected: %v", err)
	}

	tag.TotalBill += 1
	if err := v.ValidateDocument(tag); err == nil {
		t.Fatal("a whole-dollar mismatch must still be rejected")
	}
}
