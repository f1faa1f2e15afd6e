package resolver

import (
	"context"
	"fmt"

	"github.com/maadb/socialbench/pkg/assemble"
	"github.com/maadb/socialbench/pkg/models"
	"github.com/maadb/socialbench/pkg/store"
	"github.com/maadb/socialbench/pkg/store/mongodb"
)

// activePostThreshold is the post count that makes a person "active" for
// the common-interest analysis.
const activePostThreshold = 10

// activityThreshold is the combined post and comment count that makes a
// person "active" for the city analysis.
const activityThreshold = 5

// The two-stage group query: the first pass groups by (company, forum)
// and discards singleton groups cheaply, the second re-runs the join to
// collect member ids for the survivors. Ordering by company then forum id
// keeps pagination stable; the limit is applied inside the graph query.
const groupStage = `
MATCH (person:Person)-[workRel:WORK_AT]->(company:Company),
      (person)-[:MEMBER_OF]->(forum:Forum)
WHERE workRel.workFrom IS NOT NULL AND workRel.workFrom <= $target_year%s
WITH company, forum, count(person) AS groupSize
WHERE groupSize > 1
MATCH (p:Person)-[w:WORK_AT]->(company),
      (p)-[:MEMBER_OF]->(forum)
WHERE w.workFrom IS NOT NULL AND w.workFrom <= $target_year
WITH company, forum, collect(p.id) AS memberIds
ORDER BY company.id, forum.id
RETURN company.id AS company_id, forum.id AS forum_id, memberIds
LIMIT $limit`

const companyScopeClause = " AND company.id IN $company_ids"

// GroupsByWorkAndForum finds groups of at least two people who share an
// employer since-or-before targetYear and a forum membership. When
// companyName is non-empty the search is scoped to the organizations
// carrying that name; a name that resolves to no organization is a
// NotFound, distinct from a resolved company with zero qualifying groups.
func (r *Resolver) GroupsByWorkAndForum(ctx context.Context, targetYear, limit int, companyName string) ([]assemble.GroupDetail, error) {
	params := map[string]any{"target_year": targetYear, "limit": limit}
	scope := ""
	if companyName != "" {
		ids, err := r.organizationIDsByName(ctx, companyName)
		if err != nil {
			return nil, err
		}
		params["company_ids"] = ids
		scope = companyScopeClause
	}

	records, err := r.graph.Read(ctx, fmt.Sprintf(groupStage, scope), params)
	if err != nil {
		return nil, fmt.Errorf("fetching groups: %w", err)
	}
	if len(records) == 0 {
		return []assemble.GroupDetail{}, nil
	}

	type rawGroup struct {
		companyID int64
		forumID   int64
		memberIDs []int64
	}
	groups := make([]rawGroup, 0, len(records))
	var companyIDs, forumIDs, personIDs []int64
	for _, rec := range records {
		companyID, okC := recordInt64(rec, "company_id")
		forumID, okF := recordInt64(rec, "forum_id")
		if !okC || !okF {
			continue
		}
		members, _ := rec["memberIds"].([]any)
		memberIDs := make([]int64, 0, len(members))
		for _, m := range members {
			if id, ok := models.AsInt64(m); ok {
				memberIDs = append(memberIDs, id)
			}
		}
		if len(memberIDs) == 0 {
			continue
		}
		groups = append(groups, rawGroup{companyID: companyID, forumID: forumID, memberIDs: memberIDs})
		companyIDs = append(companyIDs, companyID)
		forumIDs = append(forumIDs, forumID)
		personIDs = append(personIDs, memberIDs...)
	}

	companyNames, err := r.organizationNamesByIDs(ctx, uniqueInt64(companyIDs))
	if err != nil {
		return nil, err
	}
	forums, err := r.forumsByIDs(ctx, uniqueInt64(forumIDs))
	if err != nil {
		return nil, err
	}
	persons, err := r.personsByIDs(ctx, uniqueInt64(personIDs))
	if err != nil {
		return nil, err
	}

	out := make([]assemble.GroupDetail, 0, len(groups))
	for _, g := range groups {
		members := make([]assemble.MemberInfo, 0, len(g.memberIDs))
		for _, id := range g.memberIDs {
			if person, ok := persons[id]; ok {
				members = append(members, assemble.MemberFromPerson(person))
			}
		}
		if len(members) == 0 {
			continue
		}
		detail := assemble.GroupDetail{
			CompanyID:   g.companyID,
			CompanyName: assemble.PlaceholderCompany,
			ForumID:     g.forumID,
			ForumTitle:  assemble.PlaceholderForum,
			Members:     members,
		}
		if name, ok := companyNames[g.companyID]; ok {
			detail.CompanyName = name
		}
		if forum, ok := forums[g.forumID]; ok {
			detail.ForumTitle = forum.Title
		}
		out = append(out, detail)
	}
	return out, nil
}

func (r *Resolver) organizationIDsByName(ctx context.Context, name string) ([]int64, error) {
	rows, err := r.rel.FetchAll(ctx, "SELECT id FROM organization WHERE name = ?", name)
	if err != nil {
		return nil, fmt.Errorf("resolving organization name: %w", err)
	}
	if len(rows) == 0 {
		return nil, store.NotFound("organization", name)
	}
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if id, ok := models.AsInt64(row["id"]); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *Resolver) organizationNamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.rel.FetchAll(ctx, "SELECT id, name FROM organization WHERE id IN ?", ids)
	if err != nil {
		return nil, fmt.Errorf("resolving organization names: %w", err)
	}
	for _, row := range rows {
		if id, ok := models.AsInt64(row["id"]); ok {
			out[id] = rowString(row, "name")
		}
	}
	return out, nil
}

// ActiveCities lists the cities hosting at least minActive people whose
// combined post and comment count reaches the activity threshold. Person
// activity is aggregated store-side; city names resolve relationally with
// a placeholder for unresolved ids.
func (r *Resolver) ActiveCities(ctx context.Context, minActive int64) ([]assemble.CityActivity, error) {
	activity := make(map[int64]int64)
	for _, collection := range []string{mongodb.CollectionPost, mongodb.CollectionComment} {
		counts, err := r.docs.Aggregate(ctx, collection, []store.Document{
			{"$group": store.Document{"_id": "$CreatorPersonId", "count": store.Document{"$sum": 1}}},
		})
		if err != nil {
			return nil, fmt.Errorf("aggregating %s activity: %w", collection, err)
		}
		for _, doc := range counts {
			id, ok := models.AsInt64(doc["_id"])
			if !ok {
				continue
			}
			n, _ := models.AsInt64(doc["count"])
			activity[id] += n
		}
	}

	var activeIDs []int64
	for id, count := range activity {
		if count >= activityThreshold {
			activeIDs = append(activeIDs, id)
		}
	}
	if len(activeIDs) == 0 {
		return []assemble.CityActivity{}, nil
	}

	persons, err := r.docs.Find(ctx, mongodb.CollectionPerson,
		store.Document{"id": store.Document{"$in": activeIDs}},
		store.Document{"LocationCityId": 1},
	)
	if err != nil {
		return nil, fmt.Errorf("fetching active persons: %w", err)
	}
	cityCounts := make(map[int64]int64)
	for _, doc := range persons {
		if cityID, ok := models.AsInt64(doc["LocationCityId"]); ok {
			cityCounts[cityID]++
		}
	}

	var cityIDs []int64
	for cityID, count := range cityCounts {
		if count >= minActive {
			cityIDs = append(cityIDs, cityID)
		}
	}
	if len(cityIDs) == 0 {
		return []assemble.CityActivity{}, nil
	}

	names, err := r.placeNamesByIDs(ctx, cityIDs)
	if err != nil {
		return nil, err
	}
	out := make([]assemble.CityActivity, 0, len(cityIDs))
	for _, cityID := range cityIDs {
		name, ok := names[cityID]
		if !ok {
			name = assemble.PlaceholderCity
		}
		out = append(out, assemble.CityActivity{
			CityID:          cityID,
			CityName:        name,
			ActiveUserCount: cityCounts[cityID],
		})
	}
	assemble.SortCityActivity(out)
	return out, nil
}

func (r *Resolver) placeNamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.rel.FetchAll(ctx, "SELECT id, name FROM place WHERE id IN ?", ids)
	if err != nil {
		return nil, fmt.Errorf("resolving place names: %w", err)
	}
	for _, row := range rows {
		if id, ok := models.AsInt64(row["id"]); ok {
			out[id] = rowString(row, "name")
		}
	}
	return out, nil
}

const interestCountQuery = `
MATCH (p:Person)-[:HAS_INTEREST]->(t:Tag)
WHERE p.id IN $person_ids
RETURN t.id AS tag_id, count(*) AS usage_count
ORDER BY usage_count DESC, tag_id ASC
LIMIT $limit`

// MostUsedTagsByCity finds the tags most expressed as interests by people
// living in the same city as the given person. The graph-side count is
// authoritative: a tag id the relational store cannot resolve still
// appears, with a placeholder name, so a lookup gap stays visible.
func (r *Resolver) MostUsedTagsByCity(ctx context.Context, email string, topN int) (assemble.CityTags, error) {
	person, err := r.personByEmail(ctx, email)
	if err != nil {
		return assemble.CityTags{}, err
	}
	if person.LocationCityID == nil {
		return assemble.CityTags{}, store.NotFound("city of person", email)
	}
	cityID := *person.LocationCityID

	result := assemble.CityTags{CityID: cityID, CityName: assemble.PlaceholderCity}
	names, err := r.placeNamesByIDs(ctx, []int64{cityID})
	if err != nil {
		return assemble.CityTags{}, err
	}
	if name, ok := names[cityID]; ok {
		result.CityName = name
	}

	residents, err := r.docs.Find(ctx, mongodb.CollectionPerson,
		store.Document{"LocationCityId": cityID},
		store.Document{"id": 1},
	)
	if err != nil {
		return assemble.CityTags{}, fmt.Errorf("fetching city residents: %w", err)
	}
	residentIDs := make([]int64, 0, len(residents))
	for _, doc := range residents {
		if id, ok := models.AsInt64(doc["id"]); ok {
			residentIDs = append(residentIDs, id)
		}
	}
	if len(residentIDs) == 0 {
		result.Tags = []assemble.TagUsage{}
		return result, nil
	}

	tags, err := r.topInterestTags(ctx, residentIDs, topN)
	if err != nil {
		return assemble.CityTags{}, err
	}
	result.Tags = tags
	return result, nil
}

const orgMembersQuery = `
MATCH (p:Person)-[:STUDY_AT|WORK_AT]->(o)
WHERE o.id IN $org_ids
RETURN DISTINCT p.id AS person_id`

// CommonInterests finds the top ten tags among people affiliated with any
// organization carrying the given name who have authored at least ten
// posts. A name resolving to no organization is a NotFound; a resolved
// organization with no qualifying people is an empty result.
func (r *Resolver) CommonInterests(ctx context.Context, organizationName string) ([]assemble.TagUsage, error) {
	orgIDs, err := r.organizationIDsByName(ctx, organizationName)
	if err != nil {
		return nil, err
	}

	records, err := r.graph.Read(ctx, orgMembersQuery, map[string]any{"org_ids": orgIDs})
	if err != nil {
		return nil, fmt.Errorf("fetching organization members: %w", err)
	}
	if len(records) == 0 {
		return nil, &store.EmptyResultError{Reason: "no people affiliated with " + organizationName}
	}
	personIDs := make([]int64, 0, len(records))
	for _, rec := range records {
		if id, ok := recordInt64(rec, "person_id"); ok {
			personIDs = append(personIDs, id)
		}
	}

	active, err := r.docs.Aggregate(ctx, mongodb.CollectionPost, []store.Document{
		{"$match": store.Document{"CreatorPersonId": store.Document{"$in": personIDs}}},
		{"$group": store.Document{"_id": "$CreatorPersonId", "post_count": store.Document{"$sum": 1}}},
		{"$match": store.Document{"post_count": store.Document{"$gte": activePostThreshold}}},
		{"$project": store.Document{"_id": 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("aggregating post activity: %w", err)
	}
	if len(active) == 0 {
		return nil, &store.EmptyResultError{Reason: "no active members of " + organizationName}
	}
	activeIDs := make([]int64, 0, len(active))
	for _, doc := range active {
		if id, ok := models.AsInt64(doc["_id"]); ok {
			activeIDs = append(activeIDs, id)
		}
	}

	return r.topInterestTags(ctx, activeIDs, 10)
}

// topInterestTags counts HAS_INTEREST edges for the person set, resolves
// tag display fields relationally and re-sorts after the join, since the
// relational round trip does not preserve the graph ordering.
func (r *Resolver) topInterestTags(ctx context.Context, personIDs []int64, limit int) ([]assemble.TagUsage, error) {
	records, err := r.graph.Read(ctx, interestCountQuery, map[string]any{
		"person_ids": personIDs,
		"limit":      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("counting interests: %w", err)
	}
	tags := make([]assemble.TagUsage, 0, len(records))
	tagIDs := make([]int64, 0, len(records))
	for _, rec := range records {
		tagID, ok := recordInt64(rec, "tag_id")
		if !ok {
			continue
		}
		count, _ := recordInt64(rec, "usage_count")
		tags = append(tags, assemble.TagUsage{TagID: tagID, Name: assemble.PlaceholderTag, Count: count})
		tagIDs = append(tagIDs, tagID)
	}
	if len(tags) == 0 {
		return []assemble.TagUsage{}, nil
	}

	rows, err := r.rel.FetchAll(ctx,
		`SELECT t.id AS tag_id, t.name AS tag_name, t.url AS tag_url, tc.name AS class_name
		 FROM tag t LEFT JOIN tagclass tc ON t."TypeTagClassId" = tc.id
		 WHERE t.id IN ?`, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("resolving tag details: %w", err)
	}
	details := make(map[int64]store.Row, len(rows))
	for _, row := range rows {
		if id, ok := models.AsInt64(row["tag_id"]); ok {
			details[id] = row
		}
	}
	for i := range tags {
		row, ok := details[tags[i].TagID]
		if !ok {
			continue
		}
		tags[i].Name = rowString(row, "tag_name")
		if url := rowString(row, "tag_url"); url != "" {
			tags[i].URL = models.String(url)
		}
		if class := rowString(row, "class_name"); class != "" {
			tags[i].TagClassName = models.String(class)
		}
	}
	assemble.SortTagUsages(tags)
	return tags, nil
}

const forumInterestQuery = `
MATCH (p:Person)-[:HAS_INTEREST]->(t:Tag)
WHERE t.id IN $tag_ids
MATCH (p)-[:MEMBER_OF]->(f:Forum)
WITH f.id AS forum_id, count(DISTINCT p) AS interested_members
WHERE interested_members >= $min_members
RETURN forum_id, interested_members`

// ForumsByTagClass finds forums where at least minMembers distinct members
// express interest in some tag of the named class. A class with no tags is
// a NotFound; forums missing a document are kept with degraded display
// fields because the member count is the primary signal.
func (r *Resolver) ForumsByTagClass(ctx context.Context, tagClassName string, minMembers int64) ([]assemble.ForumInterest, error) {
	rows, err := r.rel.FetchAll(ctx,
		`SELECT t.id FROM tag t JOIN tagclass tc ON t."TypeTagClassId" = tc.id WHERE tc.name = ?`,
		tagClassName)
	if err != nil {
		return nil, fmt.Errorf("resolving tag class: %w", err)
	}
	if len(rows) == 0 {
		return nil, store.NotFound("tag class", tagClassName)
	}
	tagIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		if id, ok := models.AsInt64(row["id"]); ok {
			tagIDs = append(tagIDs, id)
		}
	}

	records, err := r.graph.Read(ctx, forumInterestQuery, map[string]any{
		"tag_ids":     tagIDs,
		"min_members": minMembers,
	})
	if err != nil {
		return nil, fmt.Errorf("counting interested members: %w", err)
	}
	if len(records) == 0 {
		return []assemble.ForumInterest{}, nil
	}
	counts := make(map[int64]int64, len(records))
	forumIDs := make([]int64, 0, len(records))
	for _, rec := range records {
		forumID, ok := recordInt64(rec, "forum_id")
		if !ok {
			continue
		}
		count, _ := recordInt64(rec, "interested_members")
		counts[forumID] = count
		forumIDs = append(forumIDs, forumID)
	}

	forums, err := r.forumsByIDs(ctx, forumIDs)
	if err != nil {
		return nil, err
	}
	return assemble.MergeForumInterests(counts, forums), nil
}
