package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LegacyID is the key of a legacy document. Legacy ids arrive either as
// ObjectIDs or as plain strings/numbers, so they are normalized to a string.
type LegacyID string

// LegacyProject is keyed by the app-level id; StoreID is the Mongo _id, which
// some references use instead.
type LegacyProject struct {
	ID                  LegacyID
	StoreID             LegacyID
	Name                string
	ClientCompany       string
	ProjectType         string
	LaborRate           *float64
	StartDate           *time.Time
	EstimatedCompletion *time.Time
	ActualCompletion    *time.Time
	Status              string
	Description         string
}

type LegacyEmployee struct {
	ID            LegacyID
	StoreID       LegacyID
	Name          string
	Position      string
	HourlyRate    *float64
	BasePay       *float64
	BurdenCost    *float64
	GCBillingRate *float64
	HireDate      *time.Time
	Status        string
}

// LegacyCrewEntry is one worker line embedded in a legacy crew log.
type LegacyCrewEntry struct {
	Name       string
	TotalHours float64
}

type LegacyCrewLog struct {
	ID                LegacyID
	ProjectID         LegacyID
	Date              *time.Time
	HoursWorked       *float64
	WorkDescription   string
	WeatherConditions string
	CrewMembers       []LegacyCrewEntry
	SyncedToTM        bool
	TMTagID           LegacyID
}

type LegacyLaborEntry struct {
	WorkerName string
	TotalHours float64
}

// LegacyAmountEntry covers both material_entries and other_entries; only the
// line total matters to the migration.
type LegacyAmountEntry struct {
	Total float64
}

type LegacyTmTag struct {
	ID                LegacyID
	ProjectID         LegacyID
	DateOfWork        *time.Time
	GCEmail           string
	ForemanName       string
	Status            string
	DescriptionOfWork string
	LaborEntries      []LegacyLaborEntry
	MaterialEntries   []LegacyAmountEntry
	OtherEntries      []LegacyAmountEntry
}

type LegacyMaterial struct {
	ID           LegacyID
	ProjectID    LegacyID
	Vendor       string
	PurchaseDate *time.Time
	MaterialName string
	Quantity     *float64
	UnitCost     *float64
	TotalCost    *float64
}

// ObjectID reinterprets a legacy id as a new-schema identifier. It reports
// false when the id is not a 24-char hex ObjectID.
func (id LegacyID) ObjectID() (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}
