package etl

import (
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDecodeProject(t *testing.T) {
	oid := primitive.NewObjectID()
	p, issues := decodeProject(map[string]interface{}{
		"_id":          oid,
		"name":         "Tower A",
		"project_type": "tm_only",
		"labor_rate":   "80",
		"start_date":   "2024-02-01",
		"status":       "completed",
	})
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if string(p.ID) != oid.Hex() {
		t.Errorf("id: got %q, want %q", p.ID, oid.Hex())
	}
	if p.LaborRate == nil || *p.LaborRate != 80 {
		t.Errorf("labor_rate: got %v", p.LaborRate)
	}
	if p.StartDate == nil || p.StartDate.Year() != 2024 {
		t.Errorf("start_date: got %v", p.StartDate)
	}
}

func TestDecodeProject_Malformed(t *testing.T) {
	p, issues := decodeProject(map[string]interface{}{
		"id":         int32(7),
		"labor_rate": "lots",
		"start_date": "someday",
	})
	if p.ID != "7" {
		t.Errorf("id fallback: got %q", p.ID)
	}
	if p.LaborRate != nil || p.StartDate != nil {
		t.Errorf("malformed values must decode as missing: %+v", p)
	}
	if len(issues) != 2 || !strings.HasPrefix(issues[0], "projects[7]: labor_rate") {
		t.Fatalf("issues: got %v", issues)
	}
}

func TestDecodeCrewLog(t *testing.T) {
	l, issues := decodeCrewLog(map[string]interface{}{
		"_id":          "cl1",
		"project_id":   "p1",
		"hours_worked": int32(8),
		"synced_to_tm": true,
		"crew_members": primitive.A{
			primitive.M{"name": "A", "total_hours": 4.5},
			primitive.M{"name": "B", "total_hours": "3.5"},
		},
	})
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if l.ProjectID != "p1" || !l.SyncedToTM || l.HoursWorked == nil || *l.HoursWorked != 8 {
		t.Fatalf("unexpected log: %+v", l)
	}
	if len(l.CrewMembers) != 2 || l.CrewMembers[1].TotalHours != 3.5 {
		t.Fatalf("crew: got %+v", l.CrewMembers)
	}
}

func TestDecodeTmTag(t *testing.T) {
	tag, issues := decodeTmTag(map[string]interface{}{
		"_id":              "t1",
		"project_id":       "p1",
		"labor_entries":    []interface{}{map[string]interface{}{"worker_name": "J Doe", "total_hours": 5}},
		"material_entries": `[{"total": 100}]`,
		"other_entries":    "broken",
	})
	if len(tag.LaborEntries) != 1 || tag.LaborEntries[0].TotalHours != 5 {
		t.Errorf("labor: got %+v", tag.LaborEntries)
	}
	if len(tag.MaterialEntries) != 1 || tag.MaterialEntries[0].Total != 100 {
		t.Errorf("materials: got %+v", tag.MaterialEntries)
	}
	if len(tag.OtherEntries) != 0 || len(issues) != 1 {
		t.Errorf("other entries must be reported: %+v %v", tag.OtherEntries, issues)
	}
}

func TestDecodeMaterial(t *testing.T) {
	m, _ := decodeMaterial(map[string]interface{}{
		"_id":        "m1",
		"project_id": primitive.NewObjectID(),
		"quantity":   nil,
		"total_cost": 100.0,
	})
	if _, ok := m.ProjectID.ObjectID(); !ok {
		t.Errorf("project_id must keep its ObjectID form, got %q", m.ProjectID)
	}
	if m.Quantity != nil || m.TotalCost == nil || *m.TotalCost != 100 {
		t.Errorf("unexpected material: %+v", m)
	}
}

func TestDecodeProject_AppLevelID(t *testing.T) {
	oid := primitive.NewObjectID()
	p, _ := decodeProject(map[string]interface{}{"_id": oid, "id": "proj-uuid-1"})
	if p.ID != "proj-uuid-1" {
		t.Errorf("id: got %q, want the app-level id", p.ID)
	}
	if string(p.StoreID) != oid.Hex() {
		t.Errorf("store id: got %q, want %q", p.StoreID, oid.Hex())
	}

	e, _ := decodeEmployee(map[string]interface{}{"_id": "e9", "id": ""})
	if e.ID != "e9" || e.StoreID != "e9" {
		t.Errorf("empty id must fall back to _id: %+v", e)
	}
}
