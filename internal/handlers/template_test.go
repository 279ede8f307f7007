package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fieldcheck/checklist-api/internal/models"
	"github.com/fieldcheck/checklist-api/internal/permissions"
	"github.com/fieldcheck/checklist-api/internal/repository"
	"github.com/fieldcheck/checklist-api/internal/schema"
	"github.com/fieldcheck/checklist-api/internal/services"
)

// TemplateHandlerTestSuite defines the test suite for TemplateHandler
type TemplateHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TemplateHandler
}

// SetupTest runs before each test
func (suite *TemplateHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrganizationMember{},
		&models.Template{},
		&models.Section{},
		&models.Field{},
	)
	suite.Require().NoError(err)

	service := services.NewTemplateService(
		repository.NewTemplateRepository(suite.db),
		repository.NewOrganizationRepository(suite.db),
	)
	suite.handler = NewTemplateHandler(service)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TemplateHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper functions to create test data

func (suite *TemplateHandlerTestSuite) createTestUser(email string) *models.User {
	user := &models.User{
		Email:        email,
		PasswordHash: "hashedpassword",
	}
	suite.db.Create(user)
	return user
}

func (suite *TemplateHandlerTestSuite) createTestOrganization(name string) *models.Organization {
	org := &models.Organization{
		Name:       name,
		InviteCode: name + "_CODE",
	}
	suite.db.Create(org)
	return org
}

func (suite *TemplateHandlerTestSuite) addMember(orgID, userID uint64, role permissions.Role) {
	member := &models.OrganizationMember{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
		JoinedAt:       time.Now(),
	}
	suite.db.Create(member)
}

// Helper function to create authenticated context
func (suite *TemplateHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("user_id", userID)

	return c, w
}

func (suite *TemplateHandlerTestSuite) templatePayload(orgID uint64) map[string]any {
	return map[string]any{
		"name":            "Forklift Inspection",
		"category":        "equipment",
		"organization_id": orgID,
		"sections": []map[string]any{
			{
				"title": "Engine",
				"order": 0,
				"fields": []map[string]any{
					{"type": "text", "label": "Serial number", "required": true, "order": 0},
					{"type": "dropdown", "label": "Condition", "order": 1,
						"config": map[string]any{"options": []string{"good", "worn", "damaged"}}},
				},
			},
		},
	}
}

func (suite *TemplateHandlerTestSuite) TestCreateTemplate_Success() {
	user := suite.createTestUser("admin@example.com")
	org := suite.createTestOrganization("Test Org")
	suite.addMember(org.ID, user.ID, permissions.RoleAdmin)

	body, _ := json.Marshal(suite.templatePayload(org.ID))
	c, w := suite.createAuthContext("POST", "/api/templates", body, user.ID)

	suite.handler.CreateTemplate(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "Forklift Inspection", response["name"])

	sections := response["sections"].([]any)
	suite.Require().Len(sections, 1)
	fields := sections[0].(map[string]any)["fields"].([]any)
	suite.Require().Len(fields, 2)
	assert.Equal(suite.T(), "text", fields[0].(map[string]any)["type"])
}

// Members can view templates but not create them.
func (suite *TemplateHandlerTestSuite) TestCreateTemplate_MemberForbidden() {
	user := suite.createTestUser("member@example.com")
	org := suite.createTestOrganization("Test Org")
	suite.addMember(org.ID, user.ID, permissions.RoleMember)

	body, _ := json.Marshal(suite.templatePayload(org.ID))
	c, w := suite.createAuthContext("POST", "/api/templates", body, user.ID)

	suite.handler.CreateTemplate(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *TemplateHandlerTestSuite) TestCreateTemplate_UnknownFieldType() {
	user := suite.createTestUser("admin@example.com")
	org := suite.createTestOrganization("Test Org")
	suite.addMember(org.ID, user.ID, permissions.RoleAdmin)

	payload := suite.templatePayload(org.ID)
	sections := payload["sections"].([]map[string]any)
	sections[0]["fields"] = []map[string]any{
		{"type": "rating", "label": "Stars", "order": 0},
	}

	body, _ := json.Marshal(payload)
	c, w := suite.createAuthContext("POST", "/api/templates", body, user.ID)

	suite.handler.CreateTemplate(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TemplateHandlerTestSuite) TestCreateTemplate_DropdownWithoutOptions() {
	user := suite.createTestUser("admin@example.com")
	org := suite.createTestOrganization("Test Org")
	suite.addMember(org.ID, user.ID, permissions.RoleAdmin)

	payload := suite.templatePayload(org.ID)
	sections := payload["sections"].([]map[string]any)
	sections[0]["fields"] = []map[string]any{
		{"type": "dropdown", "label": "Condition", "order": 0},
	}

	body, _ := json.Marshal(payload)
	c, w := suite.createAuthContext("POST", "/api/templates", body, user.ID)

	suite.handler.CreateTemplate(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TemplateHandlerTestSuite) createViaHandler(userID, orgID uint64) uint64 {
	body, _ := json.Marshal(suite.templatePayload(orgID))
	c, w := suite.createAuthContext("POST", "/api/templates", body, userID)
	suite.handler.CreateTemplate(c)
	suite.Require().Equal(http.StatusCreated, w.Code)

	var response map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return uint64(response["id"].(float64))
}

func (suite *TemplateHandlerTestSuite) TestGetTemplate_Success() {
	user := suite.createTestUser("admin@example.com")
	org := suite.createTestOrganization("Test Org")
	suite.addMember(org.ID, user.ID, permissions.RoleAdmin)
	id := suite.createViaHandler(user.ID, org.ID)

	url := fmt.Sprintf("/api/templates/%d?organization_id=%d", id, org.ID)
	c, w := suite.createAuthContext("GET", url, nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(id)}}
	c.Request.URL.RawQuery = fmt.Sprintf("organization_id=%d", org.ID)

	suite.handler.GetTemplate(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "Forklift Inspection", response["name"])
}

// A private template of another organization is invisible, not forbidden.
func (suite *TemplateHandlerTestSuite) TestGetTemplate_ForeignPrivate404() {
	owner := suite.createTestUser("owner@example.com")
	outsider := suite.createTestUser("outsider@example.com")
	orgA := suite.createTestOrganization("Org A")
	orgB := suite.createTestOrganization("Org B")
	suite.addMember(orgA.ID, owner.ID, permissions.RoleAdmin)
	suite.addMember(orgB.ID, outsider.ID, permissions.RoleAdmin)
	id := suite.createViaHandler(owner.ID, orgA.ID)

	url := fmt.Sprintf("/api/templates/%d?organization_id=%d", id, orgB.ID)
	c, w := suite.createAuthContext("GET", url, nil, outsider.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(id)}}
	c.Request.URL.RawQuery = fmt.Sprintf("organization_id=%d", orgB.ID)

	suite.handler.GetTemplate(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TemplateHandlerTestSuite) TestUpdateTemplate_ReplacesSchema() {
	user := suite.createTestUser("admin@example.com")
	org := suite.createTestOrganization("Test Org")
	suite.addMember(org.ID, user.ID, permissions.RoleAdmin)
	id := suite.createViaHandler(user.ID, org.ID)

	payload := suite.templatePayload(org.ID)
	payload["name"] = "Forklift Inspection v2"
	payload["sections"] = []map[string]any{
		{
			"title": "Hydraulics",
			"order": 0,
			"fields": []map[string]any{
				{"type": "checkbox", "label": "No leaks", "required": true, "order": 0},
			},
		},
	}

	body, _ := json.Marshal(payload)
	c, w := suite.createAuthContext("PUT", fmt.Sprintf("/api/templates/%d", id), body, user.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(id)}}

	suite.handler.UpdateTemplate(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "Forklift Inspection v2", response["name"])

	sections := response["sections"].([]any)
	suite.Require().Len(sections, 1)
	assert.Equal(suite.T(), "Hydraulics", sections[0].(map[string]any)["title"])

	// The old schema rows are gone, not orphaned.
	var fieldCount int64
	suite.db.Model(&models.Field{}).Count(&fieldCount)
	assert.Equal(suite.T(), int64(1), fieldCount)
}

func (suite *TemplateHandlerTestSuite) TestDeleteTemplate_Success() {
	user := suite.createTestUser("admin@example.com")
	org := suite.createTestOrganization("Test Org")
	suite.addMember(org.ID, user.ID, permissions.RoleAdmin)
	id := suite.createViaHandler(user.ID, org.ID)

	url := fmt.Sprintf("/api/templates/%d?organization_id=%d", id, org.ID)
	c, w := suite.createAuthContext("DELETE", url, nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(id)}}
	c.Request.URL.RawQuery = fmt.Sprintf("organization_id=%d", org.ID)

	suite.handler.DeleteTemplate(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.Template{}).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *TemplateHandlerTestSuite) TestSwapSections_ReordersPair() {
	user := suite.createTestUser("admin@example.com")
	org := suite.createTestOrganization("Test Org")
	suite.addMember(org.ID, user.ID, permissions.RoleAdmin)

	template := &models.Template{
		Name:           "Two Sections",
		OrganizationID: &org.ID,
		Sections: []models.Section{
			{Title: "First", Order: 0},
			{Title: "Second", Order: 1},
		},
	}
	suite.db.Create(template)
	a, b := template.Sections[0].ID, template.Sections[1].ID

	body, _ := json.Marshal(map[string]any{
		"organization_id": org.ID,
		"a":               a,
		"b":               b,
	})
	c, w := suite.createAuthContext("POST", fmt.Sprintf("/api/templates/%d/sections/swap", template.ID), body, user.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(template.ID)}}

	suite.handler.SwapSections(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var first, second models.Section
	suite.db.First(&first, a)
	suite.db.First(&second, b)
	assert.Equal(suite.T(), 1, first.Order)
	assert.Equal(suite.T(), 0, second.Order)
}

func (suite *TemplateHandlerTestSuite) TestSwapFields_ReordersPair() {
	user := suite.createTestUser("admin@example.com")
	org := suite.createTestOrganization("Test Org")
	suite.addMember(org.ID, user.ID, permissions.RoleAdmin)

	template := &models.Template{
		Name:           "Two Fields",
		OrganizationID: &org.ID,
		Sections: []models.Section{
			{Title: "Only", Order: 0, Fields: []models.Field{
				{Type: schema.FieldTypeText, Label: "Alpha", Order: 0},
				{Type: schema.FieldTypeText, Label: "Beta", Order: 1},
			}},
		},
	}
	suite.db.Create(template)
	fields := template.Sections[0].Fields
	a, b := fields[0].ID, fields[1].ID

	body, _ := json.Marshal(map[string]any{
		"organization_id": org.ID,
		"a":               a,
		"b":               b,
	})
	c, w := suite.createAuthContext("POST", fmt.Sprintf("/api/templates/%d/fields/swap", template.ID), body, user.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(template.ID)}}

	suite.handler.SwapFields(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var alpha, beta models.Field
	suite.db.First(&alpha, a)
	suite.db.First(&beta, b)
	assert.Equal(suite.T(), 1, alpha.Order)
	assert.Equal(suite.T(), 0, beta.Order)
}

// Swapping a field that belongs to a different template is a client error,
// not a server failure.
func (suite *TemplateHandlerTestSuite) TestSwapFields_ForeignFieldRejected() {
	user := suite.createTestUser("admin@example.com")
	org := suite.createTestOrganization("Test Org")
	suite.addMember(org.ID, user.ID, permissions.RoleAdmin)

	mine := &models.Template{
		Name:           "Mine",
		OrganizationID: &org.ID,
		Sections: []models.Section{
			{Title: "S", Order: 0, Fields: []models.Field{
				{Type: schema.FieldTypeText, Label: "Alpha", Order: 0},
			}},
		},
	}
	other := &models.Template{
		Name:           "Other",
		OrganizationID: &org.ID,
		Sections: []models.Section{
			{Title: "S", Order: 0, Fields: []models.Field{
				{Type: schema.FieldTypeText, Label: "Stray", Order: 0},
			}},
		},
	}
	suite.db.Create(mine)
	suite.db.Create(other)

	body, _ := json.Marshal(map[string]any{
		"organization_id": org.ID,
		"a":               mine.Sections[0].Fields[0].ID,
		"b":               other.Sections[0].Fields[0].ID,
	})
	c, w := suite.createAuthContext("POST", fmt.Sprintf("/api/templates/%d/fields/swap", mine.ID), body, user.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(mine.ID)}}

	suite.handler.SwapFields(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TemplateHandlerTestSuite) TestListTemplates_IncludesPublicAndSystem() {
	user := suite.createTestUser("member@example.com")
	org := suite.createTestOrganization("Test Org")
	other := suite.createTestOrganization("Other Org")
	suite.addMember(org.ID, user.ID, permissions.RoleMember)

	own := &models.Template{Name: "Own", OrganizationID: &org.ID,
		Sections: []models.Section{{Title: "S", Order: 0}}}
	system := &models.Template{Name: "System",
		Sections: []models.Section{{Title: "S", Order: 0}}}
	public := &models.Template{Name: "Public", OrganizationID: &other.ID, IsPublic: true,
		Sections: []models.Section{{Title: "S", Order: 0}}}
	private := &models.Template{Name: "Private", OrganizationID: &other.ID,
		Sections: []models.Section{{Title: "S", Order: 0}}}
	for _, tpl := range []*models.Template{own, system, public, private} {
		suite.db.Create(tpl)
	}

	c, w := suite.createAuthContext("GET", "/api/templates", nil, user.ID)
	c.Request.URL.RawQuery = fmt.Sprintf("organization_id=%d", org.ID)

	suite.handler.ListTemplates(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	templates := response["templates"].([]any)

	names := make([]string, 0, len(templates))
	for _, raw := range templates {
		names = append(names, raw.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(suite.T(), []string{"Own", "System", "Public"}, names)
}

func TestTemplateHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TemplateHandlerTestSuite))
}
