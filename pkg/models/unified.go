package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ContractTM    = "T&M"
	ContractFixed = "Fixed"

	InvoiceMonthly = "monthly"

	// DefaultCostRate is the $/hr labor cost used when no crew member rate
	// can be resolved.
	DefaultCostRate = 40.0

	// MaterialMarkupPercent is applied uniformly to every migrated material.
	MaterialMarkupPercent = 20.0
)

// Project status values.
var ProjectStatuses = []string{"active", "completed", "on-hold"}

// Crew member status values.
var CrewMemberStatuses = []string{"active", "inactive"}

// T&M tag status values.
var TmTagStatuses = []string{"draft", "submitted", "accepted"}

type Project struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Client          string             `bson:"client" json:"client"`
	ContractType    string             `bson:"contractType" json:"contractType"`
	InvoiceSchedule string             `bson:"invoiceSchedule" json:"invoiceSchedule"`
	BillingDay      int                `bson:"billingDay" json:"billingDay"`
	OpeningBalance  float64            `bson:"openingBalance" json:"openingBalance"`
	GCRate          float64            `bson:"gcRate" json:"gcRate"`
	StartDate       *time.Time         `bson:"startDate" json:"startDate"`
	EndDate         *time.Time         `bson:"endDate" json:"endDate"`
	Status          string             `bson:"status" json:"status"`
	Notes           string             `bson:"notes" json:"notes"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

type CrewMember struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Position   string             `bson:"position" json:"position"`
	HourlyRate *float64           `bson:"hourlyRate" json:"hourlyRate"`
	GCBillRate float64            `bson:"gcBillRate" json:"gcBillRate"`
	HireDate   *time.Time         `bson:"hireDate" json:"hireDate"`
	Status     string             `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

type CrewLog struct {
	ID            primitive.ObjectID  `bson:"_id" json:"id"`
	ProjectID     *primitive.ObjectID `bson:"projectId" json:"projectId"`
	CrewMemberID  *primitive.ObjectID `bson:"crewMemberId" json:"crewMemberId"`
	Date          *time.Time          `bson:"date" json:"date"`
	Hours         float64             `bson:"hours" json:"hours"`
	Description   string              `bson:"description" json:"description"`
	Weather       string              `bson:"weather" json:"weather"`
	SyncedToTmTag bool                `bson:"syncedToTmTag" json:"syncedToTmTag"`
	TmTagID       *primitive.ObjectID `bson:"tmTagId" json:"tmTagId"`
	CostRate      float64             `bson:"costRate" json:"costRate"`
	BillRate      float64             `bson:"billRate" json:"billRate"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
}

type TmTag struct {
	ID                primitive.ObjectID   `bson:"_id" json:"id"`
	ProjectID         primitive.ObjectID   `bson:"projectId" json:"projectId"`
	Date              *time.Time           `bson:"date" json:"date"`
	GCEmail           string               `bson:"gcEmail" json:"gcEmail"`
	Foreman           string               `bson:"foreman" json:"foreman"`
	CrewLogs          []primitive.ObjectID `bson:"crewLogs" json:"crewLogs"`
	Materials         []primitive.ObjectID `bson:"materials" json:"materials"`
	Expenses          []primitive.ObjectID `bson:"expenses" json:"expenses"`
	TotalLaborCost    float64              `bson:"totalLaborCost" json:"totalLaborCost"`
	TotalLaborBill    float64              `bson:"totalLaborBill" json:"totalLaborBill"`
	TotalMaterialCost float64              `bson:"totalMaterialCost" json:"totalMaterialCost"`
	TotalMaterialBill float64              `bson:"totalMaterialBill" json:"totalMaterialBill"`
	TotalExpense      float64              `bson:"totalExpense" json:"totalExpense"`
	TotalBill         float64              `bson:"totalBill" json:"totalBill"`
	PdfURL            *string              `bson:"pdfUrl" json:"pdfUrl"`
	Status            string               `bson:"status" json:"status"`
	Narrative         string               `bson:"tmTagNarrative" json:"tmTagNarrative"`
	CreatedAt         time.Time            `bson:"createdAt" json:"createdAt"`
}

type Material struct {
	ID            primitive.ObjectID  `bson:"_id" json:"id"`
	ProjectID     *primitive.ObjectID `bson:"projectId" json:"projectId"`
	Vendor        string              `bson:"vendor" json:"vendor"`
	Date          *time.Time          `bson:"date" json:"date"`
	Description   string              `bson:"description" json:"description"`
	Quantity      float64             `bson:"quantity" json:"quantity"`
	UnitCost      float64             `bson:"unitCost" json:"unitCost"`
	Total         float64             `bson:"total" json:"total"`
	MarkupPercent float64             `bson:"markupPercent" json:"markupPercent"`
	Confirmed     bool                `bson:"confirmed" json:"confirmed"`
	TmTagID       *primitive.ObjectID `bson:"tmTagId" json:"tmTagId"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
}

// IsOneOf reports whether v is exactly one of allowed.
func IsOneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
