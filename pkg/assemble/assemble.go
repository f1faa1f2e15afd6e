// Package assemble normalizes the heterogeneous partial results of the
// cross-store queries into the response shapes the API returns.
//
// Graph rows, document records and relational rows arrive with different
// field names and different null conventions. This package owns the merge:
// id-keyed joins of the partial results, collapsing of null-like sentinels
// through models.Absent, placeholder labels where a secondary lookup came
// back empty, and the deterministic orderings (with explicit tie-breaks)
// the API guarantees across repeated runs.
package assemble

import (
	"sort"

	"github.com/maadb/socialbench/pkg/models"
)

// Placeholder display labels for ids whose secondary lookup resolved
// nothing. The id and the authoritative count are still returned; the gap
// stays visible instead of the row being dropped.
const (
	PlaceholderCompany = "Unknown Company"
	PlaceholderForum   = "Unknown Forum"
	PlaceholderCity    = "Unknown"
	PlaceholderTag     = "Unknown Tag"
)

// ForumMembership is one forum a person belongs to, merged from the graph
// membership edge, the forum document and the aggregate member count.
type ForumMembership struct {
	ForumID            int64  `json:"forum_id"`
	Title              string `json:"title"`
	MembershipCreation string `json:"membership_creation_date"`
	MemberCount        int64  `json:"member_count"`
}

// Membership is the graph-side (forum id, join date) pair before merging.
type Membership struct {
	ForumID  int64
	JoinDate string
}

// MergeForumMemberships joins memberships with the batch-fetched forum
// documents and per-forum member counts. Forums with no resolvable document
// are dropped. The result is ordered ascending by membership date, ties
// broken by forum id for stability.
func MergeForumMemberships(memberships []Membership, forums map[int64]models.Forum, counts map[int64]int64) []ForumMembership {
	out := make([]ForumMembership, 0, len(memberships))
	for _, m := range memberships {
		forum, ok := forums[m.ForumID]
		if !ok {
			continue
		}
		out = append(out, ForumMembership{
			ForumID:            m.ForumID,
			Title:              forum.Title,
			MembershipCreation: m.JoinDate,
			MemberCount:        counts[m.ForumID],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MembershipCreation != out[j].MembershipCreation {
			return out[i].MembershipCreation < out[j].MembershipCreation
		}
		return out[i].ForumID < out[j].ForumID
	})
	return out
}

// SecondDegreeComment is one comment written by a second-degree connection
// on a post the subject liked.
type SecondDegreeComment struct {
	PostID         int64                 `json:"post_id"`
	PostContent    models.OptionalString `json:"post_content"`
	CommenterName  string                `json:"second_person_name"`
	CommentContent models.OptionalString `json:"comment_content"`
}

// MergeSecondDegreeComments builds one row per comment from the batched
// post and person lookups. A commenter missing from the person batch keeps
// the row with a placeholder name; the comment itself is the signal.
func MergeSecondDegreeComments(comments []models.Comment, posts map[int64]models.Post, persons map[int64]models.Person) []SecondDegreeComment {
	out := make([]SecondDegreeComment, 0, len(comments))
	for _, comment := range comments {
		if comment.ParentPostID == nil {
			continue
		}
		row := SecondDegreeComment{
			PostID:         *comment.ParentPostID,
			CommentContent: comment.Content,
			CommenterName:  "Unknown",
		}
		if post, ok := posts[*comment.ParentPostID]; ok {
			row.PostContent = post.DisplayContent()
		}
		if person, ok := persons[comment.CreatorPersonID]; ok {
			row.CommenterName = person.Name()
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PostID != out[j].PostID {
			return out[i].PostID < out[j].PostID
		}
		return out[i].CommenterName < out[j].CommenterName
	})
	return out
}

// MemberInfo is the trimmed person profile used in group listings.
type MemberInfo struct {
	ID        int64    `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     []string `json:"email"`
}

// MemberFromPerson trims a person document to the group-listing profile.
func MemberFromPerson(p models.Person) MemberInfo {
	return MemberInfo{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName, Email: p.Email}
}

// GroupDetail is one (company, forum) group of colleagues who share a
// forum, with its member profiles.
type GroupDetail struct {
	CompanyID   int64        `json:"companyId"`
	CompanyName string       `json:"companyName"`
	ForumID     int64        `json:"forumId"`
	ForumTitle  string       `json:"forumTitle"`
	Members     []MemberInfo `json:"members"`
}

// TagUsage is one tag with its authoritative graph-side usage count and
// the relational display fields, placeholdered when unresolved.
type TagUsage struct {
	TagID        int64                 `json:"tag_id"`
	Name         string                `json:"tag_name"`
	URL          models.OptionalString `json:"tag_url"`
	TagClassName models.OptionalString `json:"tag_class_name"`
	Count        int64                 `json:"count"`
}

// SortTagUsages orders tags by count descending, ties broken by tag id
// ascending. Both graph queries and the post-join re-sort use it so the
// ordering is identical across runs.
func SortTagUsages(tags []TagUsage) {
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].TagID < tags[j].TagID
	})
}

// CityActivity is one city with its number of active users.
type CityActivity struct {
	CityID          int64  `json:"cityId"`
	CityName        string `json:"cityName"`
	ActiveUserCount int64  `json:"activeUserCount"`
}

// SortCityActivity orders cities by active-user count descending, ties
// broken by city id ascending.
func SortCityActivity(cities []CityActivity) {
	sort.Slice(cities, func(i, j int) bool {
		if cities[i].ActiveUserCount != cities[j].ActiveUserCount {
			return cities[i].ActiveUserCount > cities[j].ActiveUserCount
		}
		return cities[i].CityID < cities[j].CityID
	})
}

// CityTags is the most-used-tags listing for the city a person lives in.
type CityTags struct {
	CityID   int64      `json:"cityId"`
	CityName string     `json:"cityName"`
	Tags     []TagUsage `json:"tags"`
}

// ForumInterest is one forum with the count of members interested in a
// shared tag class. Display fields degrade to absent when the forum has no
// document; the count is the primary signal and the row is kept.
type ForumInterest struct {
	ForumID           int64                 `json:"forum_id"`
	Title             models.OptionalString `json:"title"`
	CreationDate      models.OptionalString `json:"creationDate"`
	ModeratorPersonID *int64                `json:"ModeratorPersonId,omitempty"`
	InterestedMembers int64                 `json:"interested_members"`
}

// MergeForumInterests attaches forum documents to the graph-side counts.
func MergeForumInterests(counts map[int64]int64, forums map[int64]models.Forum) []ForumInterest {
	out := make([]ForumInterest, 0, len(counts))
	for forumID, count := range counts {
		row := ForumInterest{ForumID: forumID, InterestedMembers: count}
		if forum, ok := forums[forumID]; ok {
			row.Title = models.String(forum.Title)
			row.CreationDate = models.String(forum.CreationDate)
			row.ModeratorPersonID = forum.ModeratorPersonID
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].InterestedMembers != out[j].InterestedMembers {
			return out[i].InterestedMembers > out[j].InterestedMembers
		}
		return out[i].ForumID < out[j].ForumID
	})
	return out
}

// CommentWithPost pairs a comment with the post it replies to, used by the
// commenters-who-know listing.
type CommentWithPost struct {
	Comment models.Comment `json:"comment"`
	Post    models.Post    `json:"post"`
	ForumID *int64         `json:"forum_id,omitempty"`
}

// KnownCommenter is one person who both knows the subject and commented on
// the subject's posts, with the comments and the forums those posts live in.
type KnownCommenter struct {
	TargetPerson  models.Person     `json:"target_person"`
	KnowingPerson models.Person     `json:"knowing_person"`
	Comments      []CommentWithPost `json:"comments"`
	Forums        []models.Forum    `json:"forums"`
}
