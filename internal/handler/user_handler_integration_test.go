package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/bitnshop/bitnshop/internal/authz"
	"github.com/bitnshop/bitnshop/internal/handler"
	"github.com/bitnshop/bitnshop/internal/mailer"
	"github.com/bitnshop/bitnshop/internal/middleware"
	"github.com/bitnshop/bitnshop/internal/models"
	"github.com/bitnshop/bitnshop/internal/repository"
	"github.com/bitnshop/bitnshop/internal/service"
	"github.com/bitnshop/bitnshop/internal/slug"
	"github.com/bitnshop/bitnshop/internal/testutil"
	"github.com/bitnshop/bitnshop/internal/utils"
	"github.com/bitnshop/bitnshop/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const cpanelTestSecret = "cpanel-test-secret"

// UserHandlerIntegrationTestSuite drives the cpanel user routes through
// the same guard chain the server installs.
type UserHandlerIntegrationTestSuite struct {
	suite.Suite
	testDB *testutil.TestDatabase
	router *gin.Engine
}

func (s *UserHandlerIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())

	userRepo := repository.NewUserRepository(s.testDB.DB)
	roleRepo := repository.NewRoleRepository(s.testDB.DB)
	slugGen := slug.NewGenerator(repository.NewSlugStore(s.testDB.DB))

	userService := service.NewUserService(userRepo, roleRepo, slugGen, mailer.NoopMailer{}, nil)
	userHandler := handler.NewUserHandler(userService)

	anyAdmin := middleware.RequireRoles(authz.MustPolicy(authz.AdminRoleNames()...))
	seniorAdmin := middleware.RequireRoles(authz.MustPolicy(authz.RoleSuperAdmin, authz.RoleAdmin))

	s.router = gin.New()
	s.router.Use(middleware.Authenticate(cpanelTestSecret))
	users := s.router.Group("/api/cpanel/users", anyAdmin)
	{
		users.GET("", userHandler.ListUsers)
		users.POST("", userHandler.CreateUser)
		users.PUT("/:id/roles", seniorAdmin, userHandler.ReplaceRoles)
		users.DELETE("/:id", seniorAdmin, userHandler.DeleteUser)
	}
}

func (s *UserHandlerIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *UserHandlerIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

func (s *UserHandlerIntegrationTestSuite) request(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		reader = bytes.NewBuffer(bodyBytes)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *UserHandlerIntegrationTestSuite) tokenFor(user *models.User) string {
	token, err := utils.GenerateToken(user, cpanelTestSecret, time.Hour)
	require.NoError(s.T(), err)
	return token
}

func (s *UserHandlerIntegrationTestSuite) TestAnonymousGets401() {
	w := s.request(http.MethodGet, "/api/cpanel/users", "", nil)

	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
	assert.Contains(s.T(), w.Body.String(), "login")
}

func (s *UserHandlerIntegrationTestSuite) TestCustomerGets403() {
	customer := testutil.DefaultCustomer(s.T(), s.testDB.DB)

	w := s.request(http.MethodGet, "/api/cpanel/users", s.tokenFor(customer), nil)

	assert.Equal(s.T(), http.StatusForbidden, w.Code)
}

func (s *UserHandlerIntegrationTestSuite) TestModeratorCanListUsers() {
	moderator := testutil.CreateTestUser(s.T(), s.testDB.DB, "mod", "mod@example.com", "Password123", authz.RoleModerator)

	w := s.request(http.MethodGet, "/api/cpanel/users", s.tokenFor(moderator), nil)

	assert.Equal(s.T(), http.StatusOK, w.Code)
}

func (s *UserHandlerIntegrationTestSuite) TestModeratorCannotChangeRoles() {
	moderator := testutil.CreateTestUser(s.T(), s.testDB.DB, "mod", "mod@example.com", "Password123", authz.RoleModerator)
	target := testutil.DefaultCustomer(s.T(), s.testDB.DB)

	w := s.request(http.MethodPut, "/api/cpanel/users/"+itoa(target.ID)+"/roles", s.tokenFor(moderator),
		map[string]any{"roles": []string{"moderator"}})

	assert.Equal(s.T(), http.StatusForbidden, w.Code)
}

func (s *UserHandlerIntegrationTestSuite) TestAdminCanChangeRoles() {
	admin := testutil.DefaultAdmin(s.T(), s.testDB.DB)
	target := testutil.DefaultCustomer(s.T(), s.testDB.DB)

	w := s.request(http.MethodPut, "/api/cpanel/users/"+itoa(target.ID)+"/roles", s.tokenFor(admin),
		map[string]any{"roles": []string{"moderator", "junior-admin"}})

	assert.Equal(s.T(), http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &response))
	user := response["user"].(map[string]any)
	assert.ElementsMatch(s.T(), []any{"moderator", "junior-admin"}, user["roles"].([]any))
}

func (s *UserHandlerIntegrationTestSuite) TestAdminCreatesUserWithRole() {
	admin := testutil.DefaultAdmin(s.T(), s.testDB.DB)

	w := s.request(http.MethodPost, "/api/cpanel/users", s.tokenFor(admin), map[string]any{
		"username": "staffer",
		"email":    "staffer@example.com",
		"password": "Password123",
		"role":     "junior-admin",
	})

	assert.Equal(s.T(), http.StatusCreated, w.Code)
	assert.Contains(s.T(), w.Body.String(), "junior-admin")
}

func (s *UserHandlerIntegrationTestSuite) TestCreateUserUnknownRoleRejected() {
	admin := testutil.DefaultAdmin(s.T(), s.testDB.DB)

	w := s.request(http.MethodPost, "/api/cpanel/users", s.tokenFor(admin), map[string]any{
		"username": "staffer",
		"email":    "staffer@example.com",
		"password": "Password123",
		"role":     "warlock",
	})

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *UserHandlerIntegrationTestSuite) TestAdminCannotDeleteOwnAccount() {
	admin := testutil.DefaultAdmin(s.T(), s.testDB.DB)

	w := s.request(http.MethodDelete, "/api/cpanel/users/"+itoa(admin.ID), s.tokenFor(admin), nil)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *UserHandlerIntegrationTestSuite) TestAdminDeletesUser() {
	admin := testutil.DefaultAdmin(s.T(), s.testDB.DB)
	target := testutil.DefaultCustomer(s.T(), s.testDB.DB)

	w := s.request(http.MethodDelete, "/api/cpanel/users/"+itoa(target.ID), s.tokenFor(admin), nil)

	assert.Equal(s.T(), http.StatusOK, w.Code)

	var count int64
	s.testDB.DB.Model(&models.User{}).Where("id = ?", target.ID).Count(&count)
	assert.Zero(s.T(), count)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestUserHandlerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UserHandlerIntegrationTestSuite))
}
