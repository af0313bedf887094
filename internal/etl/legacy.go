package etl

import (
	"fmt"
	"time"

	"github.com/BartekS5/tmmigrate/pkg/models"
	"github.com/BartekS5/tmmigrate/pkg/utils"
)

// docReader pulls typed fields out of a schemaless legacy document. Malformed
// values are treated as missing and reported as issues.
type docReader struct {
	doc    map[string]interface{}
	label  string
	issues []string
}

func newDocReader(collection string, doc map[string]interface{}) *docReader {
	r := &docReader{doc: doc}
	r.label = fmt.Sprintf("%s[%s]", collection, r.id())
	return r
}

// id is the application-level key that legacy foreign keys point at. The
// store's _id is used only when a document has no id.
func (r *docReader) id() models.LegacyID {
	if id := utils.ToString(r.doc["id"]); id != "" {
		return models.LegacyID(id)
	}
	return r.storeID()
}

func (r *docReader) storeID() models.LegacyID {
	return models.LegacyID(utils.ToString(r.doc["_id"]))
}

func (r *docReader) issue(key string, err error) {
	r.issues = append(r.issues, fmt.Sprintf("%s: %s: %v", r.label, key, err))
}

func (r *docReader) str(key string) string {
	return utils.ToString(r.doc[key])
}

func (r *docReader) ref(key string) models.LegacyID {
	return models.LegacyID(utils.ToString(r.doc[key]))
}

func (r *docReader) num(key string) *float64 {
	f, err := utils.ToFloat(r.doc[key])
	if err != nil {
		r.issue(key, err)
		return nil
	}
	return f
}

func (r *docReader) date(key string) *time.Time {
	t, err := utils.ConvertDateTime(r.doc[key])
	if err != nil {
		r.issue(key, err)
		return nil
	}
	return t
}

func (r *docReader) docs(key string) []map[string]interface{} {
	items, err := utils.AsDocSlice(r.doc[key])
	if err != nil {
		r.issue(key, err)
		return nil
	}
	return items
}

func decodeProject(doc map[string]interface{}) (models.LegacyProject, []string) {
	r := newDocReader("projects", doc)
	p := models.LegacyProject{
		ID:                  r.id(),
		StoreID:             r.storeID(),
		Name:                r.str("name"),
		ClientCompany:       r.str("client_company"),
		ProjectType:         r.str("project_type"),
		LaborRate:           r.num("labor_rate"),
		StartDate:           r.date("start_date"),
		EstimatedCompletion: r.date("estimated_completion"),
		ActualCompletion:    r.date("actual_completion"),
		Status:              r.str("status"),
		Description:         r.str("description"),
	}
	return p, r.issues
}

func decodeEmployee(doc map[string]interface{}) (models.LegacyEmployee, []string) {
	r := newDocReader("employees", doc)
	e := models.LegacyEmployee{
		ID:            r.id(),
		StoreID:       r.storeID(),
		Name:          r.str("name"),
		Position:      r.str("position"),
		HourlyRate:    r.num("hourly_rate"),
		BasePay:       r.num("base_pay"),
		BurdenCost:    r.num("burden_cost"),
		GCBillingRate: r.num("gc_billing_rate"),
		HireDate:      r.date("hire_date"),
		Status:        r.str("status"),
	}
	return e, r.issues
}

func decodeCrewLog(doc map[string]interface{}) (models.LegacyCrewLog, []string) {
	r := newDocReader("crew_logs", doc)
	l := models.LegacyCrewLog{
		ID:                r.id(),
		ProjectID:         r.ref("project_id"),
		Date:              r.date("date"),
		HoursWorked:       r.num("hours_worked"),
		WorkDescription:   r.str("work_description"),
		WeatherConditions: r.str("weather_conditions"),
		SyncedToTM:        utils.ToBool(doc["synced_to_tm"]),
		TMTagID:           r.ref("tm_tag_id"),
	}
	for _, m := range r.docs("crew_members") {
		l.CrewMembers = append(l.CrewMembers, models.LegacyCrewEntry{
			Name:       utils.ToString(m["name"]),
			TotalHours: utils.FloatOr(m["total_hours"], 0),
		})
	}
	return l, r.issues
}

func decodeTmTag(doc map[string]interface{}) (models.LegacyTmTag, []string) {
	r := newDocReader("tm_tags", doc)
	t := models.LegacyTmTag{
		ID:                r.id(),
		ProjectID:         r.ref("project_id"),
		DateOfWork:        r.date("date_of_work"),
		GCEmail:           r.str("gc_email"),
		ForemanName:       r.str("foreman_name"),
		Status:            r.str("status"),
		DescriptionOfWork: r.str("description_of_work"),
	}
	for _, e := range r.docs("labor_entries") {
		t.LaborEntries = append(t.LaborEntries, models.LegacyLaborEntry{
			WorkerName: utils.ToString(e["worker_name"]),
			TotalHours: utils.FloatOr(e["total_hours"], 0),
		})
	}
	for _, e := range r.docs("material_entries") {
		t.MaterialEntries = append(t.MaterialEntries, models.LegacyAmountEntry{Total: utils.FloatOr(e["total"], 0)})
	}
	for _, e := range r.docs("other_entries") {
		t.OtherEntries = append(t.OtherEntries, models.LegacyAmountEntry{Total: utils.FloatOr(e["total"], 0)})
	}
	return t, r.issues
}

func decodeMaterial(doc map[string]interface{}) (models.LegacyMaterial, []string) {
	r := newDocReader("materials", doc)
	m := models.LegacyMaterial{
		ID:           r.id(),
		ProjectID:    r.ref("project_id"),
		Vendor:       r.str("vendor"),
		PurchaseDate: r.date("purchase_date"),
		MaterialName: r.str("material_name"),
		Quantity:     r.num("quantity"),
		UnitCost:     r.num("unit_cost"),
		TotalCost:    r.num("total_cost"),
	}
	return m, r.issues
}
