package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alumnihub/alumnihub/pkg/portal/auth"
	"github.com/alumnihub/alumnihub/pkg/portal/moderation"
	"github.com/alumnihub/alumnihub/pkg/portal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, phone string, role models.SystemRole, status models.UserStatus) models.User {
	hash, _ := auth.HashPassword("password123")
	user := models.User{
		Phone:        phone,
		PasswordHash: hash,
		Name:         "Test User",
		Status:       status,
		SystemRole:   role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db)

	adminGroup := r.Group("/admin")
	adminGroup.Use(auth.AuthMiddleware(), auth.RequireAdmin())
	handler.RegisterRoutes(adminGroup)

	return r
}

func getAuthHeader(user models.User) string {
	token, _ := auth.GenerateToken(user.ID, user.Phone, string(user.SystemRole))
	return "Bearer " + token
}

func doRequest(router *gin.Engine, method, path string, body interface{}, user models.User) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		buf = bytes.NewBuffer(jsonBody)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", getAuthHeader(user))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func strPtr(s string) *string { return &s }

func TestAdminRoutesRequireAdmin(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	member := createTestUser(t, db, "+15550000002", models.SystemRoleUser, models.UserStatusApproved)

	resp := doRequest(router, "GET", "/admin/users", nil, member)
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.Code)
	}
}

func TestListUsersWithFilters(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "+15550000001", models.SystemRoleAdmin, models.UserStatusApproved)
	createTestUser(t, db, "+15550000002", models.SystemRoleUser, models.UserStatusPending)
	createTestUser(t, db, "+15550000003", models.SystemRoleUser, models.UserStatusApproved)

	resp := doRequest(router, "GET", "/admin/users", nil, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var users []UserResponse
	json.Unmarshal(resp.Body.Bytes(), &users)
	if len(users) != 3 {
		t.Errorf("Expected 3 users, got %d", len(users))
	}

	resp = doRequest(router, "GET", "/admin/users?status=pending", nil, admin)
	users = nil
	json.Unmarshal(resp.Body.Bytes(), &users)
	if len(users) != 1 {
		t.Errorf("Expected 1 pending user, got %d", len(users))
	}

	resp = doRequest(router, "GET", "/admin/users?q=0000003", nil, admin)
	users = nil
	json.Unmarshal(resp.Body.Bytes(), &users)
	if len(users) != 1 {
		t.Errorf("Expected 1 matching user, got %d", len(users))
	}
}

func TestApproveUser(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "+15550000001", models.SystemRoleAdmin, models.UserStatusApproved)
	pending := createTestUser(t, db, "+15550000002", models.SystemRoleUser, models.UserStatusPending)

	resp := doRequest(router, "PATCH", fmt.Sprintf("/admin/users/%d", pending.ID), UpdateUserRequest{
		Status: strPtr("approved"),
	}, admin)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var loaded models.User
	db.First(&loaded, pending.ID)
	if loaded.Status != models.UserStatusApproved {
		t.Errorf("Expected approved, got %s", loaded.Status)
	}
}

func TestCannotDemoteSelf(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "+15550000001", models.SystemRoleAdmin, models.UserStatusApproved)

	resp := doRequest(router, "PATCH", fmt.Sprintf("/admin/users/%d", admin.ID), UpdateUserRequest{
		SystemRole: strPtr("user"),
	}, admin)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d: %s", resp.Code, resp.Body.String())
	}

	var loaded models.User
	db.First(&loaded, admin.ID)
	if loaded.SystemRole != models.SystemRoleAdmin {
		t.Error("Expected admin role to be unchanged")
	}
}

func TestDeleteUserRefusedWhilePostsExist(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "+15550000001", models.SystemRoleAdmin, models.UserStatusApproved)
	member := createTestUser(t, db, "+15550000002", models.SystemRoleUser, models.UserStatusApproved)

	db.Create(&models.Post{Title: "Keep", Content: "x", AuthorID: member.ID})

	resp := doRequest(router, "DELETE", fmt.Sprintf("/admin/users/%d", member.ID), nil, admin)
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409 while posts exist, got %d", resp.Code)
	}

	// After the post is gone the user can be deleted, taking memberships along
	db.Unscoped().Where("author_id = ?", member.ID).Delete(&models.Post{})
	group := models.Group{Name: "Class of 2010"}
	db.Create(&group)
	db.Create(&models.GroupMembership{UserID: member.ID, GroupID: group.ID})

	resp = doRequest(router, "DELETE", fmt.Sprintf("/admin/users/%d", member.ID), nil, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	db.Model(&models.GroupMembership{}).Where("user_id = ?", member.ID).Count(&count)
	if count != 0 {
		t.Errorf("Expected memberships to be removed, found %d", count)
	}
}

func TestDeleteUserFreesPhone(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "+15550000001", models.SystemRoleAdmin, models.UserStatusApproved)
	member := createTestUser(t, db, "+15550000002", models.SystemRoleUser, models.UserStatusApproved)

	resp := doRequest(router, "DELETE", fmt.Sprintf("/admin/users/%d", member.ID), nil, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	// The phone number is registrable again; a lingering removed row would
	// trip the unique phone index here
	recreated := createTestUser(t, db, "+15550000002", models.SystemRoleUser, models.UserStatusPending)
	if recreated.ID == member.ID {
		t.Error("Expected a fresh user row, got the old ID back")
	}
}

func TestBulkModeratePartialFailure(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "+15550000001", models.SystemRoleAdmin, models.UserStatusApproved)
	author := createTestUser(t, db, "+15550000002", models.SystemRoleUser, models.UserStatusApproved)

	group := models.Group{Name: "Class of 2010"}
	db.Create(&group)

	pending := models.Post{Title: "Pending", Content: "x", AuthorID: author.ID, Status: moderation.StatusPending}
	rejected := models.Post{Title: "Rejected", Content: "x", AuthorID: author.ID, Status: moderation.StatusRejected}
	db.Create(&pending)
	db.Create(&rejected)

	// Approve three IDs: two real posts plus one that does not exist
	resp := doRequest(router, "POST", "/admin/posts/bulk", BulkModerateRequest{
		IDs:      []uint{pending.ID, rejected.ID, 9999},
		Status:   "approved",
		GroupIDs: []uint{group.ID},
	}, admin)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var response BulkModerateResponse
	json.Unmarshal(resp.Body.Bytes(), &response)
	if response.Succeeded != 2 || response.Failed != 1 {
		t.Errorf("Expected 2 succeeded / 1 failed, got %d / %d", response.Succeeded, response.Failed)
	}

	// The real posts were approved despite the bad ID
	var loaded models.Post
	db.First(&loaded, pending.ID)
	if loaded.Status != moderation.StatusApproved {
		t.Errorf("Expected pending post to be approved, got %s", loaded.Status)
	}
	loaded = models.Post{}
	db.First(&loaded, rejected.ID)
	if loaded.Status != moderation.StatusApproved {
		t.Errorf("Expected rejected post to be approved, got %s", loaded.Status)
	}
}

func TestBulkRejectRequiresReason(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "+15550000001", models.SystemRoleAdmin, models.UserStatusApproved)
	author := createTestUser(t, db, "+15550000002", models.SystemRoleUser, models.UserStatusApproved)

	post := models.Post{Title: "Pending", Content: "x", AuthorID: author.ID, Status: moderation.StatusPending}
	db.Create(&post)

	resp := doRequest(router, "POST", "/admin/posts/bulk", BulkModerateRequest{
		IDs:    []uint{post.ID},
		Status: "rejected",
	}, admin)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d: %s", resp.Code, resp.Body.String())
	}

	var loaded models.Post
	db.First(&loaded, post.ID)
	if loaded.Status != moderation.StatusPending {
		t.Errorf("Expected post to stay pending, got %s", loaded.Status)
	}
}

func TestBulkModerateIllegalTransitionReported(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "+15550000001", models.SystemRoleAdmin, models.UserStatusApproved)
	author := createTestUser(t, db, "+15550000002", models.SystemRoleUser, models.UserStatusApproved)

	approved := models.Post{Title: "Approved", Content: "x", AuthorID: author.ID, Status: moderation.StatusApproved}
	pending := models.Post{Title: "Pending", Content: "x", AuthorID: author.ID, Status: moderation.StatusPending}
	db.Create(&approved)
	db.Create(&pending)

	// approved -> rejected is illegal; the pending one still goes through
	resp := doRequest(router, "POST", "/admin/posts/bulk", BulkModerateRequest{
		IDs:    []uint{approved.ID, pending.ID},
		Status: "rejected",
		Reason: "cleanup",
	}, admin)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var response BulkModerateResponse
	json.Unmarshal(resp.Body.Bytes(), &response)
	if response.Succeeded != 1 || response.Failed != 1 {
		t.Errorf("Expected 1 succeeded / 1 failed, got %d / %d", response.Succeeded, response.Failed)
	}

	var loaded models.Post
	db.First(&loaded, approved.ID)
	if loaded.Status != moderation.StatusApproved {
		t.Errorf("Expected approved post untouched, got %s", loaded.Status)
	}
	loaded = models.Post{}
	db.First(&loaded, pending.ID)
	if loaded.Status != moderation.StatusRejected {
		t.Errorf("Expected pending post rejected, got %s", loaded.Status)
	}
}

func TestGetStats(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "+15550000001", models.SystemRoleAdmin, models.UserStatusApproved)
	author := createTestUser(t, db, "+15550000002", models.SystemRoleUser, models.UserStatusApproved)
	createTestUser(t, db, "+15550000003", models.SystemRoleUser, models.UserStatusPending)

	db.Create(&models.Group{Name: "Class of 2010"})
	db.Create(&models.Post{Title: "P1", Content: "x", AuthorID: author.ID, Status: moderation.StatusPending})
	db.Create(&models.Post{Title: "P2", Content: "x", AuthorID: author.ID, Status: moderation.StatusApproved})

	resp := doRequest(router, "GET", "/admin/stats", nil, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var stats StatsResponse
	json.Unmarshal(resp.Body.Bytes(), &stats)
	if stats.TotalUsers != 3 {
		t.Errorf("Expected 3 users, got %d", stats.TotalUsers)
	}
	if stats.PendingUsers != 1 {
		t.Errorf("Expected 1 pending user, got %d", stats.PendingUsers)
	}
	if stats.TotalPosts != 2 || stats.PendingPosts != 1 || stats.ApprovedPosts != 1 {
		t.Errorf("Unexpected post stats: %+v", stats)
	}
	if stats.TotalGroups != 1 {
		t.Errorf("Expected 1 group, got %d", stats.TotalGroups)
	}
}
