package etl

import (
	"strings"
	"time"

	"github.com/BartekS5/tmmigrate/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Options are the run-wide defaults applied by the transformer and pipeline.
type Options struct {
	GCRate         float64
	BillingDay     int
	OpeningBalance float64
	BatchSize      int
	DryRun         bool
}

// Transformer maps legacy records to unified documents. New ids are assigned
// here, before insertion, so id maps never depend on a read-back.
type Transformer struct {
	Options Options
	NewID   func() primitive.ObjectID
	Now     func() time.Time
}

func NewTransformer(opts Options) *Transformer {
	return &Transformer{
		Options: opts,
		NewID:   primitive.NewObjectID,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

func (t *Transformer) Project(lp models.LegacyProject) models.Project {
	contract := models.ContractFixed
	if lp.ProjectType == "tm_only" {
		contract = models.ContractTM
	}

	name := lp.Name
	if strings.TrimSpace(name) == "" {
		name = "Untitled Project"
	}

	status := "active"
	if models.IsOneOf(lp.Status, models.ProjectStatuses) {
		status = lp.Status
	}

	gcRate := t.Options.GCRate
	if lp.LaborRate != nil && *lp.LaborRate > 0 {
		gcRate = *lp.LaborRate
	}

	end := lp.ActualCompletion
	if end == nil {
		end = lp.EstimatedCompletion
	}

	return models.Project{
		ID:              t.NewID(),
		Name:            name,
		Client:          lp.ClientCompany,
		ContractType:    contract,
		InvoiceSchedule: models.InvoiceMonthly,
		BillingDay:      t.Options.BillingDay,
		OpeningBalance:  t.Options.OpeningBalance,
		GCRate:          gcRate,
		StartDate:       lp.StartDate,
		EndDate:         end,
		Status:          status,
		Notes:           lp.Description,
		CreatedAt:       t.Now(),
	}
}

func (t *Transformer) CrewMember(le models.LegacyEmployee) models.CrewMember {
	var hourly *float64
	switch {
	case le.HourlyRate != nil:
		v := *le.HourlyRate
		hourly = &v
	case le.BasePay != nil || le.BurdenCost != nil:
		var v float64
		if le.BasePay != nil {
			v += *le.BasePay
		}
		if le.BurdenCost != nil {
			v += *le.BurdenCost
		}
		hourly = &v
	}

	bill := t.Options.GCRate
	if le.GCBillingRate != nil && *le.GCBillingRate > 0 {
		bill = *le.GCBillingRate
	}

	status := "inactive"
	if le.Status == "active" {
		status = "active"
	}

	return models.CrewMember{
		ID:         t.NewID(),
		Name:       le.Name,
		Position:   le.Position,
		HourlyRate: hourly,
		GCBillRate: bill,
		HireDate:   le.HireDate,
		Status:     status,
		CreatedAt:  t.Now(),
	}
}

// CrewLog maps a legacy log. projectID is the already-resolved project
// reference (nil when unresolved). When the embedded crew carries no hours the
// flat hours_worked count and default rates are used.
func (t *Transformer) CrewLog(ll models.LegacyCrewLog, projectID *primitive.ObjectID, crew *CrewIndex) models.CrewLog {
	hours, costRate, billRate, ok := crew.BlendedRates(ll.CrewMembers)
	if !ok {
		hours = 0
		if ll.HoursWorked != nil && *ll.HoursWorked > 0 {
			hours = *ll.HoursWorked
		}
		costRate = models.DefaultCostRate
		billRate = t.Options.GCRate
	}

	return models.CrewLog{
		ID:            t.NewID(),
		ProjectID:     projectID,
		Date:          ll.Date,
		Hours:         hours,
		Description:   ll.WorkDescription,
		Weather:       ll.WeatherConditions,
		SyncedToTmTag: ll.SyncedToTM,
		CostRate:      costRate,
		BillRate:      billRate,
		CreatedAt:     t.Now(),
	}
}

func (t *Transformer) TmTag(lt models.LegacyTmTag, projectID primitive.ObjectID, crew *CrewIndex) models.TmTag {
	totals := crew.TagTotals(lt)

	status := "draft"
	if models.IsOneOf(lt.Status, models.TmTagStatuses) {
		status = lt.Status
	}

	return models.TmTag{
		ID:                t.NewID(),
		ProjectID:         projectID,
		Date:              lt.DateOfWork,
		GCEmail:           lt.GCEmail,
		Foreman:           lt.ForemanName,
		CrewLogs:          []primitive.ObjectID{},
		Materials:         []primitive.ObjectID{},
		Expenses:          []primitive.ObjectID{},
		TotalLaborCost:    totals.LaborCost,
		TotalLaborBill:    totals.LaborBill,
		TotalMaterialCost: totals.MaterialCost,
		TotalMaterialBill: totals.MaterialBill,
		TotalExpense:      totals.Expense,
		TotalBill:         totals.Bill,
		Status:            status,
		Narrative:         lt.DescriptionOfWork,
		CreatedAt:         t.Now(),
	}
}

func (t *Transformer) Material(lm models.LegacyMaterial, projectID *primitive.ObjectID) models.Material {
	vendor := lm.Vendor
	if strings.TrimSpace(vendor) == "" {
		vendor = "Unknown Vendor"
	}

	quantity := 1.0
	if lm.Quantity != nil && *lm.Quantity != 0 {
		quantity = *lm.Quantity
	}

	var unitCost float64
	if lm.UnitCost != nil {
		unitCost = *lm.UnitCost
	}

	total := quantity * unitCost
	if lm.TotalCost != nil {
		total = *lm.TotalCost
	}

	return models.Material{
		ID:            t.NewID(),
		ProjectID:     projectID,
		Vendor:        vendor,
		Date:          lm.PurchaseDate,
		Description:   lm.MaterialName,
		Quantity:      quantity,
		UnitCost:      unitCost,
		Total:         total,
		MarkupPercent: models.MaterialMarkupPercent,
		Confirmed:     true,
		CreatedAt:     t.Now(),
	}
}
