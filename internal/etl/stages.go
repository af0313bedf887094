package etl

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/BartekS5/tmmigrate/internal/report"
	"github.com/BartekS5/tmmigrate/pkg/logger"
	"github.com/BartekS5/tmmigrate/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type idMap map[models.LegacyID]primitive.ObjectID

// register maps both keys of a legacy document to its new id. References may
// use either the app-level id or the store _id; an _id never displaces a key
// another document already owns. It reports false when the document has no key.
func (m idMap) register(id, storeID models.LegacyID, oid primitive.ObjectID) bool {
	if id == "" && storeID == "" {
		return false
	}
	if id != "" {
		m[id] = oid
	}
	if storeID != "" && storeID != id {
		if _, taken := m[storeID]; !taken {
			m[storeID] = oid
		}
	}
	return true
}

// runState carries what earlier stages hand to later ones. The maps are only
// written by the stage that builds them.
type runState struct {
	log        *report.Log
	projectIDs idMap
	crewIDs    idMap
	crew       *CrewIndex
}

func (st *runState) warnAll(issues []string) {
	for _, s := range issues {
		st.log.Warn("%s", s)
	}
}

func (p *Pipeline) extract(ctx context.Context, entity string, st *runState) ([]map[string]interface{}, error) {
	docs, err := p.Extractor.Extract(ctx, models.MappingFor(entity).LegacyCollection)
	if err != nil {
		return nil, err
	}
	st.log.SetCurrent(entity, len(docs))
	return docs, nil
}

func (p *Pipeline) migrateProjects(ctx context.Context, st *runState) error {
	raw, err := p.extract(ctx, models.EntityProjects, st)
	if err != nil {
		return err
	}

	seen := map[string]int{}
	mapped := 0
	docs := make([]interface{}, 0, len(raw))
	for _, doc := range raw {
		lp, issues := decodeProject(doc)
		st.warnAll(issues)

		np := p.Transformer.Project(lp)
		seen[np.Name]++
		if st.projectIDs.register(lp.ID, lp.StoreID, np.ID) {
			mapped++
		} else {
			st.log.Warn("projects: legacy project %q has no id; references to it cannot be resolved", np.Name)
		}
		docs = append(docs, np)
	}
	noteDuplicates(st.log, "project", seen)

	n, err := p.insert(ctx, models.EntityProjects, docs)
	st.log.AddNew(models.EntityProjects, n)
	if err != nil {
		return err
	}
	st.log.Note("mapped %d legacy project ids", mapped)
	return nil
}

func (p *Pipeline) migrateCrewMembers(ctx context.Context, st *runState) error {
	raw, err := p.extract(ctx, models.EntityCrewMembers, st)
	if err != nil {
		return err
	}

	seen := map[string]int{}
	mapped := 0
	docs := make([]interface{}, 0, len(raw))
	for _, doc := range raw {
		le, issues := decodeEmployee(doc)
		st.warnAll(issues)

		cm := p.Transformer.CrewMember(le)
		seen[cm.Name]++
		if st.crewIDs.register(le.ID, le.StoreID, cm.ID) {
			mapped++
		}
		if !st.crew.Add(cm) {
			st.log.Warn("employees[%s]: crew member name %q already indexed; rate lookups use the first entry", le.ID, cm.Name)
		}
		docs = append(docs, cm)
	}
	noteDuplicates(st.log, "employee", seen)

	n, err := p.insert(ctx, models.EntityCrewMembers, docs)
	st.log.AddNew(models.EntityCrewMembers, n)
	if err != nil {
		return err
	}
	st.log.Note("mapped %d legacy employee ids", mapped)
	return nil
}

// migrateCrewLogs degrades gracefully: an unknown project keeps the log, with
// the legacy id reused when it is a valid ObjectID.
func (p *Pipeline) migrateCrewLogs(ctx context.Context, st *runState) error {
	raw, err := p.extract(ctx, models.EntityCrewLogs, st)
	if err != nil {
		return err
	}

	st.log.AddNew(models.EntityCrewLogs, 0)
	total := 0
	start := time.Now()
	for n, batch := range Batches(raw, p.Options.BatchSize) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("crew log batch %d: %w", n, err)
		}

		docs := make([]interface{}, 0, len(batch))
		for _, doc := range batch {
			ll, issues := decodeCrewLog(doc)
			st.warnAll(issues)
			projectID := st.resolveLenient("crew_logs", ll.ID, ll.ProjectID)
			docs = append(docs, p.Transformer.CrewLog(ll, projectID, st.crew))
		}

		written, err := p.insert(ctx, models.EntityCrewLogs, docs)
		st.log.AddNew(models.EntityCrewLogs, written)
		if err != nil {
			return fmt.Errorf("crew log batch %d: %w", n, err)
		}

		total += written
		rate := 0.0
		if d := time.Since(start).Seconds(); d > 0 {
			rate = float64(total) / d
		}
		logger.L().Info("crew log batch done",
			zap.Int("batch", n),
			zap.Int("size", len(docs)),
			zap.Int("total", total),
			zap.Float64("docs_per_sec", rate))
	}
	return nil
}

// migrateTmTags is strict: a tag whose project is not in the project map is
// skipped with a single warning.
func (p *Pipeline) migrateTmTags(ctx context.Context, st *runState) error {
	raw, err := p.extract(ctx, models.EntityTmTags, st)
	if err != nil {
		return err
	}

	docs := make([]interface{}, 0, len(raw))
	for _, doc := range raw {
		lt, issues := decodeTmTag(doc)
		st.warnAll(issues)

		projectID, ok := st.projectIDs[lt.ProjectID]
		if !ok || lt.ProjectID == "" {
			st.log.Warn("tm_tags[%s]: project %q not found; tag skipped", lt.ID, lt.ProjectID)
			st.log.Add(models.EntityTmTags+"_skipped", 1)
			continue
		}
		docs = append(docs, p.Transformer.TmTag(lt, projectID, st.crew))
	}

	n, err := p.insert(ctx, models.EntityTmTags, docs)
	st.log.AddNew(models.EntityTmTags, n)
	return err
}

func (p *Pipeline) migrateMaterials(ctx context.Context, st *runState) error {
	raw, err := p.extract(ctx, models.EntityMaterials, st)
	if err != nil {
		return err
	}

	docs := make([]interface{}, 0, len(raw))
	for _, doc := range raw {
		lm, issues := decodeMaterial(doc)
		st.warnAll(issues)
		projectID := st.resolveLenient("materials", lm.ID, lm.ProjectID)
		docs = append(docs, p.Transformer.Material(lm, projectID))
	}

	n, err := p.insert(ctx, models.EntityMaterials, docs)
	st.log.AddNew(models.EntityMaterials, n)
	return err
}

// resolveLenient maps a legacy project reference, falling back to reading the
// legacy id as an ObjectID, then to null. Fallbacks are reported.
func (st *runState) resolveLenient(collection string, id, ref models.LegacyID) *primitive.ObjectID {
	if oid, ok := st.projectIDs[ref]; ok && ref != "" {
		return &oid
	}
	if oid, ok := ref.ObjectID(); ok {
		st.log.Warn("%s[%s]: project %q not in project map; legacy id reused", collection, id, ref)
		return &oid
	}
	st.log.Warn("%s[%s]: project %q unresolved; projectId left null", collection, id, ref)
	return nil
}

func noteDuplicates(l *report.Log, kind string, seen map[string]int) {
	var dups []string
	for name, n := range seen {
		if n > 1 {
			dups = append(dups, fmt.Sprintf("%q x%d", name, n))
		}
	}
	if len(dups) == 0 {
		return
	}
	slices.Sort(dups)
	l.Warn("duplicate %s names mapped by position, not by name: %s", kind, strings.Join(dups, ", "))
}
