package models

import "go.mongodb.org/mongo-driver/bson"

// Entity keys used for report counts and stage names.
const (
	EntityProjects    = "projects"
	EntityCrewMembers = "crew_members"
	EntityCrewLogs    = "crew_logs"
	EntityTmTags      = "tm_tags"
	EntityMaterials   = "materials"
	EntityExpenses    = "expenses"
	EntityInvoices    = "invoices"
	EntityPayables    = "payables"
)

// CollectionMapping ties an entity to the legacy collection it is read from
// and the unified collection it is written to.
type CollectionMapping struct {
	Entity           string
	LegacyCollection string // empty for collections with no legacy source
	TargetCollection string
	Indexes          []bson.D
}

// Mappings lists every unified collection in migration order.
var Mappings = []CollectionMapping{
	{
		Entity:           EntityProjects,
		LegacyCollection: "projects",
		TargetCollection: "projects_new",
		Indexes:          []bson.D{{{Key: "name", Value: 1}}},
	},
	{
		Entity:           EntityCrewMembers,
		LegacyCollection: "employees",
		TargetCollection: "crew_members",
		Indexes:          []bson.D{{{Key: "name", Value: 1}}},
	},
	{
		Entity:           EntityCrewLogs,
		LegacyCollection: "crew_logs",
		TargetCollection: "crew_logs_new",
		Indexes:          []bson.D{{{Key: "projectId", Value: 1}, {Key: "date", Value: 1}}},
	},
	{
		Entity:           EntityTmTags,
		LegacyCollection: "tm_tags",
		TargetCollection: "tm_tags_new",
		Indexes:          []bson.D{{{Key: "projectId", Value: 1}, {Key: "date", Value: 1}}},
	},
	{
		Entity:           EntityMaterials,
		LegacyCollection: "materials",
		TargetCollection: "materials_new",
		Indexes:          []bson.D{{{Key: "projectId", Value: 1}}},
	},
	{
		Entity:           EntityExpenses,
		TargetCollection: "expenses",
		Indexes:          []bson.D{{{Key: "projectId", Value: 1}}},
	},
	{
		Entity:           EntityInvoices,
		TargetCollection: "invoices",
		Indexes:          []bson.D{{{Key: "projectId", Value: 1}}},
	},
	{
		Entity:           EntityPayables,
		TargetCollection: "payables",
		Indexes:          []bson.D{{{Key: "projectId", Value: 1}}},
	},
}

// MappingFor returns the mapping of entity. It panics on an unknown entity,
// which is a programming error.
func MappingFor(entity string) CollectionMapping {
	for _, m := range Mappings {
		if m.Entity == entity {
			return m
		}
	}
	panic("models: unknown entity " + entity)
}
