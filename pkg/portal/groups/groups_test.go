package groups

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alumnihub/alumnihub/pkg/portal/auth"
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

func createTestUser(t *testing.T, db *gorm.DB, phone string, role models.SystemRole) models.User {
	hash, _ := auth.HashPassword("password123")
	user := models.User{
		Phone:        phone,
		PasswordHash: hash,
		Name:         "Test User",
		Status:       models.UserStatusApproved,
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

	groupsGroup := r.Group("/groups")
	groupsGroup.Use(auth.AuthMiddleware())
	handler.RegisterRoutes(groupsGroup, auth.RequireAdmin())
	handler.RegisterMemberRoutes(groupsGroup, auth.RequireAdmin())

	typesGroup := r.Group("/group-types")
	typesGroup.Use(auth.AuthMiddleware())
	handler.RegisterTypeRoutes(typesGroup, auth.RequireAdmin())

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

func TestCreateGroup(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "+15550000001", models.SystemRoleAdmin)

	resp := doRequest(router, "POST", "/groups", CreateGroupRequest{
		Name:        "Class of 2010",
		Description: "Graduates of 2010",
	}, admin)

	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var response GroupResponse
	json.Unmarshal(resp.Body.Bytes(), &response)
	if response.Name != "Class of 2010" {
		t.Errorf("Expected name 'Class of 2010', got %s", response.Name)
	}
}

func TestCreateGroupRequiresAdmin(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	member := createTestUser(t, db, "+15550000002", models.SystemRoleUser)

	resp := doRequest(router, "POST", "/groups", CreateGroupRequest{Name: "Rogue Group"}, member)

	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.Code)
	}
}

func TestCreateGroupDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "+15550000001", models.SystemRoleAdmin)
	db.Create(&models.Group{Name: "Class of 2010"})

	resp := doRequest(router, "POST", "/groups", CreateGroupRequest{Name: "Class of 2010"}, admin)

	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", resp.Code)
	}
}

func TestListGroupsPaginated(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	member := createTestUser(t, db, "+15550000002", models.SystemRoleUser)

	for i := 1; i <= 25; i++ {
		db.Create(&models.Group{Name: fmt.Sprintf("Group %02d", i)})
	}

	resp := doRequest(router, "GET", "/groups?limit=20", nil, member)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var response GroupListResponse
	json.Unmarshal(resp.Body.Bytes(), &response)
	if len(response.Groups) != 20 {
		t.Errorf("Expected one page of 20 groups, got %d", len(response.Groups))
	}
	if response.Total != 25 {
		t.Errorf("Expected total 25, got %d", response.Total)
	}
}

func TestListGroupsAll(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	member := createTestUser(t, db, "+15550000002", models.SystemRoleUser)

	for i := 1; i <= 25; i++ {
		db.Create(&models.Group{Name: fmt.Sprintf("Group %02d", i)})
	}
	db.Create(&models.Group{Name: "Faculty"})

	// all=true returns every match, ignoring pagination
	resp := doRequest(router, "GET", "/groups?all=true", nil, member)
	var response GroupListResponse
	json.Unmarshal(resp.Body.Bytes(), &response)
	if len(response.Groups) != 26 {
		t.Errorf("Expected all 26 groups, got %d", len(response.Groups))
	}

	// all=true respects the search filter
	resp = doRequest(router, "GET", "/groups?all=true&search=Group", nil, member)
	response = GroupListResponse{}
	json.Unmarshal(resp.Body.Bytes(), &response)
	if len(response.Groups) != 25 {
		t.Errorf("Expected 25 matching groups, got %d", len(response.Groups))
	}
}

func TestUpdateGroup(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "+15550000001", models.SystemRoleAdmin)

	group := models.Group{Name: "Old Name"}
	db.Create(&group)

	resp := doRequest(router, "PATCH", fmt.Sprintf("/groups/%d", group.ID), UpdateGroupRequest{
		Name: "New Name",
	}, admin)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var loaded models.Group
	db.First(&loaded, group.ID)
	if loaded.Name != "New Name" {
		t.Errorf("Expected name to be updated, got %s", loaded.Name)
	}
}

func TestDeleteGroupCascades(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "+15550000001", models.SystemRoleAdmin)
	member := createTestUser(t, db, "+15550000002", models.SystemRoleUser)

	group := models.Group{Name: "Doomed Group"}
	db.Create(&group)
	db.Create(&models.GroupMembership{UserID: member.ID, GroupID: group.ID})

	post := models.Post{Title: "Post", Content: "x", AuthorID: member.ID}
	db.Create(&post)
	db.Model(&post).Association("Groups").Replace(&[]models.Group{group})

	resp := doRequest(router, "DELETE", fmt.Sprintf("/groups/%d", group.ID), nil, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var membershipCount int64
	db.Model(&models.GroupMembership{}).Where("group_id = ?", group.ID).Count(&membershipCount)
	if membershipCount != 0 {
		t.Errorf("Expected memberships to be removed, found %d", membershipCount)
	}

	var joinCount int64
	db.Table("post_groups").Where("group_id = ?", group.ID).Count(&joinCount)
	if joinCount != 0 {
		t.Errorf("Expected post_groups rows to be removed, found %d", joinCount)
	}

	// The post itself survives the group deletion
	var postCount int64
	db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&postCount)
	if postCount != 1 {
		t.Error("Expected the post to survive group deletion")
	}
}

func TestAddAndRemoveMember(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "+15550000001", models.SystemRoleAdmin)
	member := createTestUser(t, db, "+15550000002", models.SystemRoleUser)

	group := models.Group{Name: "Class of 2010"}
	db.Create(&group)

	resp := doRequest(router, "POST", fmt.Sprintf("/groups/%d/members", group.ID),
		AddMemberRequest{UserID: member.ID}, admin)
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	// Adding twice conflicts
	resp = doRequest(router, "POST", fmt.Sprintf("/groups/%d/members", group.ID),
		AddMemberRequest{UserID: member.ID}, admin)
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409 on duplicate add, got %d", resp.Code)
	}

	resp = doRequest(router, "GET", fmt.Sprintf("/groups/%d/members", group.ID), nil, admin)
	var members []MemberResponse
	json.Unmarshal(resp.Body.Bytes(), &members)
	if len(members) != 1 {
		t.Errorf("Expected 1 member, got %d", len(members))
	}

	resp = doRequest(router, "DELETE", fmt.Sprintf("/groups/%d/members/%d", group.ID, member.ID), nil, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	// Removing again is a 404
	resp = doRequest(router, "DELETE", fmt.Sprintf("/groups/%d/members/%d", group.ID, member.ID), nil, admin)
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 on second remove, got %d", resp.Code)
	}

	// The member can be re-added after removal; a lingering removed row would
	// trip the unique membership index here
	resp = doRequest(router, "POST", fmt.Sprintf("/groups/%d/members", group.ID),
		AddMemberRequest{UserID: member.ID}, admin)
	if resp.Code != http.StatusCreated {
		t.Errorf("Expected status 201 on re-add after removal, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDeleteGroupFreesName(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "+15550000001", models.SystemRoleAdmin)

	group := models.Group{Name: "Class of 2010"}
	db.Create(&group)

	resp := doRequest(router, "DELETE", fmt.Sprintf("/groups/%d", group.ID), nil, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doRequest(router, "POST", "/groups", CreateGroupRequest{Name: "Class of 2010"}, admin)
	if resp.Code != http.StatusCreated {
		t.Errorf("Expected status 201 recreating a deleted group's name, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestGroupTypeLifecycle(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	admin := createTestUser(t, db, "+15550000001", models.SystemRoleAdmin)

	resp := doRequest(router, "POST", "/group-types", GroupTypeRequest{Label: "Graduation Year"}, admin)
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created GroupTypeResponse
	json.Unmarshal(resp.Body.Bytes(), &created)

	// Duplicate label conflicts
	resp = doRequest(router, "POST", "/group-types", GroupTypeRequest{Label: "Graduation Year"}, admin)
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409 on duplicate label, got %d", resp.Code)
	}

	// Deleting a type in use is refused
	db.Create(&models.Group{Name: "Class of 2010", GroupTypeID: &created.ID})
	resp = doRequest(router, "DELETE", fmt.Sprintf("/group-types/%d", created.ID), nil, admin)
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409 while type is in use, got %d", resp.Code)
	}

	// After the group is gone the type can be deleted
	db.Where("name = ?", "Class of 2010").Delete(&models.Group{})
	resp = doRequest(router, "DELETE", fmt.Sprintf("/group-types/%d", created.ID), nil, admin)
	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	// The label is free again after deletion
	resp = doRequest(router, "POST", "/group-types", GroupTypeRequest{Label: "Graduation Year"}, admin)
	if resp.Code != http.StatusCreated {
		t.Errorf("Expected status 201 recreating a deleted type's label, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestResolveGroups(t *testing.T) {
	db := setupTestDB(t)

	a := models.Group{Name: "Class of 2010"}
	b := models.Group{Name: "Faculty"}
	db.Create(&a)
	db.Create(&b)

	resolved, err := Resolve(db, []uint{a.ID, b.ID, a.ID})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(resolved) != 2 {
		t.Errorf("Expected 2 groups after dedupe, got %d", len(resolved))
	}

	resolved, err = Resolve(db, nil)
	if err != nil {
		t.Fatalf("Resolve of empty set failed: %v", err)
	}
	if len(resolved) != 0 {
		t.Errorf("Expected empty result for empty input, got %d", len(resolved))
	}

	if _, err := Resolve(db, []uint{a.ID, 9999}); err != ErrGroupMissing {
		t.Errorf("Expected ErrGroupMissing for unknown ID, got %v", err)
	}
}
