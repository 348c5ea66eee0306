// Package visibility computes which content a given viewer may see.
//
// The rule is a single group-intersection predicate: a viewer sees a content
// item iff they share at least one group with it, or they are an admin, or
// (for posts) they authored it. The admin bypass lives here and nowhere else.
package visibility

import (
	"github.com/alumnihub/alumnihub/pkg/portal/auth"
	"github.com/alumnihub/alumnihub/pkg/portal/moderation"
	"github.com/alumnihub/alumnihub/pkg/portal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Viewer identifies the requesting user for visibility decisions.
type Viewer struct {
	ID      uint
	IsAdmin bool
}

// ViewerFromContext builds a Viewer from the authenticated gin context.
func ViewerFromContext(c *gin.Context) Viewer {
	id, _ := auth.GetUserID(c)
	return Viewer{ID: id, IsAdmin: auth.IsAdmin(c)}
}

// CanSeePost is the pure form of the post visibility predicate. A post is
// visible when the viewer is an admin or the author, or when the post is
// approved and shares at least one group with the viewer.
func CanSeePost(v Viewer, authorID uint, status moderation.Status, postGroupIDs, viewerGroupIDs []uint) bool {
	if v.IsAdmin || v.ID == authorID {
		return true
	}
	if status != moderation.StatusApproved {
		return false
	}
	return intersects(postGroupIDs, viewerGroupIDs)
}

// CanSeeItem is the predicate for albums and events, which carry no
// moderation gate: group intersection or admin.
func CanSeeItem(v Viewer, itemGroupIDs, viewerGroupIDs []uint) bool {
	if v.IsAdmin {
		return true
	}
	return intersects(itemGroupIDs, viewerGroupIDs)
}

func intersects(a, b []uint) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[uint]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}

// memberGroupIDs is the subquery of group IDs the viewer belongs to.
func memberGroupIDs(db *gorm.DB, v Viewer) *gorm.DB {
	return db.Model(&models.GroupMembership{}).Select("group_id").Where("user_id = ?", v.ID)
}

// PostsFor scopes a query to the posts the viewer may see, newest first with
// the post ID breaking ties so pagination stays stable.
func PostsFor(db *gorm.DB, v Viewer) *gorm.DB {
	q := db.Model(&models.Post{}).Order("posts.created_at DESC, posts.id DESC")
	if v.IsAdmin {
		return q
	}
	shared := db.Table("post_groups").Select("post_id").
		Where("group_id IN (?)", memberGroupIDs(db, v))
	return q.Where("posts.author_id = ? OR (posts.status = ? AND posts.id IN (?))",
		v.ID, moderation.StatusApproved, shared)
}

// AlbumsFor scopes a query to the albums the viewer may see.
func AlbumsFor(db *gorm.DB, v Viewer) *gorm.DB {
	q := db.Model(&models.Album{}).Order("albums.created_at DESC, albums.id DESC")
	if v.IsAdmin {
		return q
	}
	shared := db.Table("album_groups").Select("album_id").
		Where("group_id IN (?)", memberGroupIDs(db, v))
	return q.Where("albums.id IN (?)", shared)
}

// EventsFor scopes a query to the events the viewer may see.
func EventsFor(db *gorm.DB, v Viewer) *gorm.DB {
	q := db.Model(&models.Event{}).Order("events.created_at DESC, events.id DESC")
	if v.IsAdmin {
		return q
	}
	shared := db.Table("event_groups").Select("event_id").
		Where("group_id IN (?)", memberGroupIDs(db, v))
	return q.Where("events.id IN (?)", shared)
}
