package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/maadb/socialbench/pkg/store/mongodb"
	"github.com/maadb/socialbench/pkg/store/neo4j"
)

// The dataset ships as part-files under dynamic/<Entity> and
// static/<Entity> directories. Discovery globs rather than hard-codes
// part names so regenerated datasets with different part hashes load
// without changes.

func partFiles(dataDir, sub string) ([]string, error) {
	pattern := filepath.Join(dataDir, sub, "part-*.csv")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", pattern, err)
	}
	sort.Strings(files)
	return files, nil
}

// DocumentSpecs enumerates the document collection loads for a dataset
// rooted at dataDir.
func DocumentSpecs(dataDir string) ([]DocumentSpec, error) {
	entities := []struct {
		dir        string
		collection string
		transform  RowTransform
	}{
		{"dynamic/Person", mongodb.CollectionPerson, PersonTransform},
		{"dynamic/Post", mongodb.CollectionPost, PostTransform},
		{"dynamic/Comment", mongodb.CollectionComment, CommentTransform},
		{"dynamic/Forum", mongodb.CollectionForum, ForumTransform},
	}
	specs := make([]DocumentSpec, 0, len(entities))
	for _, e := range entities {
		files, err := partFiles(dataDir, e.dir)
		if err != nil {
			return nil, err
		}
		specs = append(specs, DocumentSpec{
			Collection: e.collection,
			KeyField:   "id",
			Files:      files,
			BatchSize:  DocumentBatchSize,
			Transform:  e.transform,
		})
	}
	return specs, nil
}

// EdgeSpecs enumerates the relationship loads. The membership file is
// named from the forum's perspective but the edge runs person to forum,
// matching how the traversals read it.
func EdgeSpecs(dataDir string) ([]EdgeSpec, error) {
	edges := []struct {
		dir  string
		spec EdgeSpec
	}{
		{"dynamic/Person_knows_Person", EdgeSpec{
			RelType: neo4j.RelKnows, FromLabel: neo4j.LabelPerson, ToLabel: neo4j.LabelPerson,
			FromColumn: "Person1Id", ToColumn: "Person2Id", PropColumns: []string{"creationDate"},
		}},
		{"dynamic/Person_likes_Post", EdgeSpec{
			RelType: neo4j.RelLikes, FromLabel: neo4j.LabelPerson, ToLabel: neo4j.LabelPost,
			FromColumn: "PersonId", ToColumn: "PostId", PropColumns: []string{"creationDate"},
		}},
		{"dynamic/Person_likes_Comment", EdgeSpec{
			RelType: neo4j.RelLikes, FromLabel: neo4j.LabelPerson, ToLabel: neo4j.LabelComment,
			FromColumn: "PersonId", ToColumn: "CommentId", PropColumns: []string{"creationDate"},
		}},
		{"dynamic/Person_hasInterest_Tag", EdgeSpec{
			RelType: neo4j.RelHasInterest, FromLabel: neo4j.LabelPerson, ToLabel: neo4j.LabelTag,
			FromColumn: "PersonId", ToColumn: "TagId", PropColumns: []string{"creationDate"},
		}},
		{"dynamic/Forum_hasMember_Person", EdgeSpec{
			RelType: neo4j.RelMemberOf, FromLabel: neo4j.LabelPerson, ToLabel: neo4j.LabelForum,
			FromColumn: "PersonId", ToColumn: "ForumId", PropColumns: []string{"creationDate"},
		}},
		{"dynamic/Forum_hasTag_Tag", EdgeSpec{
			RelType: neo4j.RelHasTag, FromLabel: neo4j.LabelForum, ToLabel: neo4j.LabelTag,
			FromColumn: "ForumId", ToColumn: "TagId", PropColumns: []string{"creationDate"},
		}},
		{"dynamic/Post_hasTag_Tag", EdgeSpec{
			RelType: neo4j.RelHasTag, FromLabel: neo4j.LabelPost, ToLabel: neo4j.LabelTag,
			FromColumn: "PostId", ToColumn: "TagId", PropColumns: []string{"creationDate"},
		}},
		{"dynamic/Comment_hasTag_Tag", EdgeSpec{
			RelType: neo4j.RelHasTag, FromLabel: neo4j.LabelComment, ToLabel: neo4j.LabelTag,
			FromColumn: "CommentId", ToColumn: "TagId", PropColumns: []string{"creationDate"},
		}},
		{"dynamic/Person_studyAt_University", EdgeSpec{
			RelType: neo4j.RelStudyAt, FromLabel: neo4j.LabelPerson, ToLabel: neo4j.LabelUniversity,
			FromColumn: "PersonId", ToColumn: "UniversityId", PropColumns: []string{"creationDate", "classYear"},
			IntPropColumns: []string{"classYear"},
		}},
		{"dynamic/Person_workAt_Company", EdgeSpec{
			RelType: neo4j.RelWorkAt, FromLabel: neo4j.LabelPerson, ToLabel: neo4j.LabelCompany,
			FromColumn: "PersonId", ToColumn: "CompanyId", PropColumns: []string{"creationDate", "workFrom"},
			IntPropColumns: []string{"workFrom"},
		}},
	}
	specs := make([]EdgeSpec, 0, len(edges))
	for _, e := range edges {
		files, err := partFiles(dataDir, e.dir)
		if err != nil {
			return nil, err
		}
		spec := e.spec
		spec.Files = files
		spec.BatchSize = GraphTxBatchSize
		specs = append(specs, spec)
	}
	return specs, nil
}

// TableSpecs enumerates the relational reference table loads. The dataset
// spells the organization directory the British way.
func TableSpecs(dataDir string) ([]TableSpec, error) {
	tables := []struct {
		dir  string
		spec TableSpec
	}{
		{"static/Place", TableSpec{Table: "place", KeyColumn: "id", IntColumns: []string{"id", "PartOfPlaceId"}}},
		{"static/Organisation", TableSpec{Table: "organization", KeyColumn: "id", IntColumns: []string{"id", "LocationPlaceId"}}},
		{"static/TagClass", TableSpec{Table: "tagclass", KeyColumn: "id", IntColumns: []string{"id", "SubclassOfTagClassId"}}},
		{"static/Tag", TableSpec{Table: "tag", KeyColumn: "id", IntColumns: []string{"id", "TypeTagClassId"}}},
	}
	specs := make([]TableSpec, 0, len(tables))
	for _, t := range tables {
		files, err := partFiles(dataDir, t.dir)
		if err != nil {
			return nil, err
		}
		spec := t.spec
		spec.Files = files
		spec.BatchSize = RelationalBatchSize
		specs = append(specs, spec)
	}
	return specs, nil
}

// Run executes an import: index and constraint setup, then documents,
// reference tables, and relationships. Foreign keys attach only after
// every table has loaded, since tag rows reference tagclass rows that may
// sit later in the load order. Per-file failures are reported in the
// returned summaries; only store-level failures abort the run.
//
// A non-empty only set restricts the run to the named entities (collection,
// table or relationship names). Foreign keys attach only on unrestricted
// runs, when every referenced table is known to be loaded.
func (l *Loader) Run(ctx context.Context, dataDir string, only []string) ([]Summary, error) {
	selected := make(map[string]bool, len(only))
	for _, name := range only {
		selected[name] = true
	}
	wants := func(entity string) bool {
		return len(selected) == 0 || selected[entity]
	}
	if err := l.docs.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensuring document indexes: %w", err)
	}
	if err := l.rel.CreateSchema(ctx); err != nil {
		return nil, fmt.Errorf("creating relational schema: %w", err)
	}
	if err := l.graph.EnsureConstraints(ctx); err != nil {
		return nil, fmt.Errorf("ensuring graph constraints: %w", err)
	}

	var summaries []Summary

	docSpecs, err := DocumentSpecs(dataDir)
	if err != nil {
		return summaries, err
	}
	for _, spec := range docSpecs {
		if !wants(spec.Collection) {
			continue
		}
		s, err := l.LoadDocuments(ctx, spec)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, s)
	}

	tableSpecs, err := TableSpecs(dataDir)
	if err != nil {
		return summaries, err
	}
	for _, spec := range tableSpecs {
		if !wants(spec.Table) {
			continue
		}
		s, err := l.LoadTables(ctx, spec)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, s)
	}
	if len(selected) == 0 {
		if err := l.rel.AddForeignKeys(ctx); err != nil {
			return summaries, fmt.Errorf("attaching foreign keys: %w", err)
		}
	}

	edgeSpecs, err := EdgeSpecs(dataDir)
	if err != nil {
		return summaries, err
	}
	for _, spec := range edgeSpecs {
		if !wants(spec.RelType) {
			continue
		}
		s, err := l.LoadEdges(ctx, spec)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
