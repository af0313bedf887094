package etl

import (
	"fmt"
	"math"

	"github.com/BartekS5/tmmigrate/pkg/models"
)

// Float drift allowed between totalBill and its parts: absolute for small
// totals, relative once rounding of large totals exceeds it.
const (
	tagTotalTolerance    = 1e-6
	tagTotalRelTolerance = 1e-12
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateDocument checks the structural guarantees of a unified document.
// A failure means the transformer produced something it must not.
func (v *Validator) ValidateDocument(doc interface{}) error {
	switch d := doc.(type) {
	case models.Project:
		if !models.IsOneOf(d.Status, models.ProjectStatuses) {
			return fmt.Errorf("project %s: invalid status %q", d.ID.Hex(), d.Status)
		}
		if d.ContractType != models.ContractTM && d.ContractType != models.ContractFixed {
			return fmt.Errorf("project %s: invalid contract type %q", d.ID.Hex(), d.ContractType)
		}
		if d.BillingDay < 1 || d.BillingDay > 31 {
			return fmt.Errorf("project %s: billing day %d out of range", d.ID.Hex(), d.BillingDay)
		}
		return finite("project "+d.ID.Hex(), d.GCRate, d.OpeningBalance)
	case models.CrewMember:
		if !models.IsOneOf(d.Status, models.CrewMemberStatuses) {
			return fmt.Errorf("crew member %s: invalid status %q", d.ID.Hex(), d.Status)
		}
		if d.HourlyRate != nil {
			if err := finite("crew member "+d.ID.Hex(), *d.HourlyRate); err != nil {
				return err
			}
		}
		return finite("crew member "+d.ID.Hex(), d.GCBillRate)
	case models.CrewLog:
		return finite("crew log "+d.ID.Hex(), d.Hours, d.CostRate, d.BillRate)
	case models.TmTag:
		if !models.IsOneOf(d.Status, models.TmTagStatuses) {
			return fmt.Errorf("tm tag %s: invalid status %q", d.ID.Hex(), d.Status)
		}
		if err := finite("tm tag "+d.ID.Hex(), d.TotalLaborCost, d.TotalLaborBill, d.TotalMaterialCost, d.TotalMaterialBill, d.TotalExpense, d.TotalBill); err != nil {
			return err
		}
		sum := d.TotalLaborBill + d.TotalMaterialBill + d.TotalExpense
		if !closeEnough(d.TotalBill, sum) {
			return fmt.Errorf("tm tag %s: totalBill %v does not equal bill parts %v", d.ID.Hex(), d.TotalBill, sum)
		}
		return nil
	case models.Material:
		if d.MarkupPercent != models.MaterialMarkupPercent || !d.Confirmed {
			return fmt.Errorf("material %s: markup/confirmed not stamped", d.ID.Hex())
		}
		return finite("material "+d.ID.Hex(), d.Quantity, d.UnitCost, d.Total)
	default:
		return fmt.Errorf("unsupported document type %T", doc)
	}
}

func closeEnough(a, b float64) bool {
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= math.Max(tagTotalTolerance, tagTotalRelTolerance*scale)
}

func finite(label string, vals ...float64) error {
	for _, f := range vals {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%s: non-finite value %v", label, f)
		}
	}
	return nil
}
