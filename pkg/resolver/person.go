package resolver

import (
	"context"
	"fmt"

	"github.com/maadb/socialbench/pkg/assemble"
	"github.com/maadb/socialbench/pkg/models"
	"github.com/maadb/socialbench/pkg/store"
	"github.com/maadb/socialbench/pkg/store/mongodb"
)

// PostsByEmail returns every post created by the person owning the given
// email address. Document store only; the graph is not consulted.
func (r *Resolver) PostsByEmail(ctx context.Context, email string) ([]models.Post, error) {
	person, err := r.personByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return r.postsByCreator(ctx, person.ID)
}

const membershipQuery = `
MATCH (p:Person {id: $person_id})-[r:MEMBER_OF]->(f:Forum)
RETURN f.id AS forum_id, r.creationDate AS membership_creation_date`

const memberCountQuery = `
MATCH (p:Person)-[:MEMBER_OF]->(f:Forum)
WHERE f.id IN $forum_ids
RETURN f.id AS forum_id, count(p) AS member_count`

// ForumsOfPerson returns the forums the person belongs to, each with the
// membership date and the forum's total member count. Member counts come
// from one aggregate graph query across all forum ids, not one query per
// forum. A person with no memberships is a NotFound, matching the posts
// and membership queries' shared contract.
func (r *Resolver) ForumsOfPerson(ctx context.Context, email string) ([]assemble.ForumMembership, error) {
	person, err := r.personByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	records, err := r.graph.Read(ctx, membershipQuery, map[string]any{"person_id": person.ID})
	if err != nil {
		return nil, fmt.Errorf("fetching memberships: %w", err)
	}
	if len(records) == 0 {
		return nil, store.NotFound("forum membership", email)
	}

	memberships := make([]assemble.Membership, 0, len(records))
	forumIDs := make([]int64, 0, len(records))
	for _, rec := range records {
		forumID, ok := recordInt64(rec, "forum_id")
		if !ok {
			continue
		}
		forumIDs = append(forumIDs, forumID)
		join, _ := rec["membership_creation_date"].(string)
		memberships = append(memberships, assemble.Membership{ForumID: forumID, JoinDate: join})
	}

	forums, err := r.forumsByIDs(ctx, forumIDs)
	if err != nil {
		return nil, err
	}

	countRecords, err := r.graph.Read(ctx, memberCountQuery, map[string]any{"forum_ids": forumIDs})
	if err != nil {
		return nil, fmt.Errorf("counting members: %w", err)
	}
	counts := make(map[int64]int64, len(countRecords))
	for _, rec := range countRecords {
		forumID, ok := recordInt64(rec, "forum_id")
		if !ok {
			continue
		}
		count, _ := recordInt64(rec, "member_count")
		counts[forumID] = count
	}

	return assemble.MergeForumMemberships(memberships, forums, counts), nil
}

const knownCommentersQuery = `
MATCH (a:Person {id: $target_id})-[:KNOWS]->(b:Person)
WHERE b.id IN $commenter_ids
RETURN b.id AS commenter_id`

// CommentersWhoKnow finds the people who both know the given person and
// commented on that person's posts, returning each with their comments,
// the commented posts and the forums those posts live in. The who-knows
// check runs as one graph query over the whole commenter set, and the
// forum lookup as one batched document query.
func (r *Resolver) CommentersWhoKnow(ctx context.Context, email string) ([]assemble.KnownCommenter, error) {
	target, err := r.personByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	posts, err := r.postsByCreator(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return []assemble.KnownCommenter{}, nil
	}
	postByID := make(map[int64]models.Post, len(posts))
	postIDs := make([]int64, 0, len(posts))
	for _, post := range posts {
		postByID[post.ID] = post
		postIDs = append(postIDs, post.ID)
	}

	commentDocs, err := r.docs.Find(ctx, mongodb.CollectionComment, store.Document{
		"ParentPostId": store.Document{"$in": postIDs},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching comments: %w", err)
	}
	commentsByCreator := make(map[int64][]models.Comment)
	for _, doc := range commentDocs {
		comment, err := models.CommentFromDocument(doc)
		if err != nil {
			r.log.Warn().Err(err).Msg("skipping malformed comment document")
			continue
		}
		commentsByCreator[comment.CreatorPersonID] = append(commentsByCreator[comment.CreatorPersonID], comment)
	}
	if len(commentsByCreator) == 0 {
		return []assemble.KnownCommenter{}, nil
	}

	commenterIDs := make([]int64, 0, len(commentsByCreator))
	for id := range commentsByCreator {
		commenterIDs = append(commenterIDs, id)
	}
	records, err := r.graph.Read(ctx, knownCommentersQuery, map[string]any{
		"target_id":     target.ID,
		"commenter_ids": commenterIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("checking knows edges: %w", err)
	}
	knownIDs := make([]int64, 0, len(records))
	for _, rec := range records {
		if id, ok := recordInt64(rec, "commenter_id"); ok {
			knownIDs = append(knownIDs, id)
		}
	}
	if len(knownIDs) == 0 {
		return []assemble.KnownCommenter{}, nil
	}

	persons, err := r.personsByIDs(ctx, knownIDs)
	if err != nil {
		return nil, err
	}

	// One forum fetch for the whole commenter set, then each commenter's
	// forums are sliced out of the shared map.
	type commenterComments struct {
		withPosts []assemble.CommentWithPost
		forumIDs  []int64
	}
	perCommenter := make(map[int64]commenterComments, len(knownIDs))
	allForumIDs := make([]int64, 0)
	for _, commenterID := range knownIDs {
		comments := commentsByCreator[commenterID]
		cc := commenterComments{withPosts: make([]assemble.CommentWithPost, 0, len(comments))}
		for _, comment := range comments {
			if comment.ParentPostID == nil {
				continue
			}
			post, ok := postByID[*comment.ParentPostID]
			if !ok {
				continue
			}
			cc.withPosts = append(cc.withPosts, assemble.CommentWithPost{
				Comment: comment,
				Post:    post,
				ForumID: post.ContainerForumID,
			})
			if post.ContainerForumID != nil {
				cc.forumIDs = append(cc.forumIDs, *post.ContainerForumID)
			}
		}
		perCommenter[commenterID] = cc
		allForumIDs = append(allForumIDs, cc.forumIDs...)
	}
	forums, err := r.forumsByIDs(ctx, uniqueInt64(allForumIDs))
	if err != nil {
		return nil, err
	}

	results := make([]assemble.KnownCommenter, 0, len(knownIDs))
	for _, commenterID := range knownIDs {
		person, ok := persons[commenterID]
		if !ok {
			continue
		}
		cc := perCommenter[commenterID]
		forumList := make([]models.Forum, 0, len(cc.forumIDs))
		for _, id := range uniqueInt64(cc.forumIDs) {
			if forum, ok := forums[id]; ok {
				forumList = append(forumList, forum)
			}
		}
		results = append(results, assemble.KnownCommenter{
			TargetPerson:  target,
			KnowingPerson: person,
			Comments:      cc.withPosts,
			Forums:        forumList,
		})
	}
	return results, nil
}

const secondDegreeQuery = `
MATCH (p1:Person {id: $person_id})-[:KNOWS*2..2]-(p2:Person)
RETURN DISTINCT p2.id AS second_person_id`

const likedPostsQuery = `
MATCH (p1:Person {id: $person_id})-[:LIKES]->(post:Post)
RETURN DISTINCT post.id AS liked_post_id`

// SecondDegreeCommenters finds comments written by people exactly two
// KNOWS hops away from the person, on posts the person liked. The three
// empty-data conditions are reported distinctly: no second-degree
// connections, no liked posts, and no matching comments each carry their
// own not-found entity.
func (r *Resolver) SecondDegreeCommenters(ctx context.Context, email string) ([]assemble.SecondDegreeComment, error) {
	person, err := r.personByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	neighborRecords, err := r.graph.Read(ctx, secondDegreeQuery, map[string]any{"person_id": person.ID})
	if err != nil {
		return nil, fmt.Errorf("fetching second-degree connections: %w", err)
	}
	if len(neighborRecords) == 0 {
		return nil, store.NotFound("second-degree connections", email)
	}
	neighborIDs := make([]int64, 0, len(neighborRecords))
	for _, rec := range neighborRecords {
		if id, ok := recordInt64(rec, "second_person_id"); ok {
			neighborIDs = append(neighborIDs, id)
		}
	}

	likedRecords, err := r.graph.Read(ctx, likedPostsQuery, map[string]any{"person_id": person.ID})
	if err != nil {
		return nil, fmt.Errorf("fetching liked posts: %w", err)
	}
	if len(likedRecords) == 0 {
		return nil, store.NotFound("liked posts", email)
	}
	likedIDs := make([]int64, 0, len(likedRecords))
	for _, rec := range likedRecords {
		if id, ok := recordInt64(rec, "liked_post_id"); ok {
			likedIDs = append(likedIDs, id)
		}
	}

	// Set intersection pushed into the store query.
	commentDocs, err := r.docs.Find(ctx, mongodb.CollectionComment, store.Document{
		"CreatorPersonId": store.Document{"$in": neighborIDs},
		"ParentPostId":    store.Document{"$in": likedIDs},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching comments: %w", err)
	}
	if len(commentDocs) == 0 {
		return nil, store.NotFound("comments from second-degree connections", email)
	}

	comments := make([]models.Comment, 0, len(commentDocs))
	postIDs := make([]int64, 0, len(commentDocs))
	commenterIDs := make([]int64, 0, len(commentDocs))
	for _, doc := range commentDocs {
		comment, err := models.CommentFromDocument(doc)
		if err != nil {
			r.log.Warn().Err(err).Msg("skipping malformed comment document")
			continue
		}
		comments = append(comments, comment)
		if comment.ParentPostID != nil {
			postIDs = append(postIDs, *comment.ParentPostID)
		}
		commenterIDs = append(commenterIDs, comment.CreatorPersonID)
	}

	posts, err := r.postsByIDs(ctx, uniqueInt64(postIDs))
	if err != nil {
		return nil, err
	}
	persons, err := r.personsByIDs(ctx, uniqueInt64(commenterIDs))
	if err != nil {
		return nil, err
	}
	return assemble.MergeSecondDegreeComments(comments, posts, persons), nil
}
