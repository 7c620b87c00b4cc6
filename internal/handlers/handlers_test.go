package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/estately/estately/internal/auth"
	"github.com/estately/estately/internal/handlers"
	"github.com/estately/estately/internal/middleware"
	"github.com/estately/estately/internal/models"
)

// setupApp builds the API surface against an in-memory SQLite database,
// mirroring the route table the server binary installs.
func setupApp(t *testing.T) (*fiber.App, *gorm.DB, *auth.Manager) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to access connection pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.PostDetail{},
		&models.SavedPost{},
		&models.Chat{},
		&models.Message{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	mgr := auth.NewManager("test-secret", "estately-test", time.Hour)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	authHandler := &handlers.AuthHandler{DB: db, Auth: mgr, CookieExpiry: time.Hour}
	postHandler := &handlers.PostHandler{DB: db, Auth: mgr}
	chatHandler := &handlers.ChatHandler{DB: db}
	adminHandler := &handlers.AdminHandler{DB: db}

	requireAuth := middleware.RequireAuth(mgr)

	api := app.Group("/api")
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/logout", authHandler.Logout)

	api.Get("/posts", postHandler.ListPosts)
	api.Get("/posts/:id", postHandler.GetPost)
	api.Post("/posts", requireAuth, postHandler.CreatePost)
	api.Put("/posts/:id", requireAuth, postHandler.UpdatePost)
	api.Delete("/posts/:id", requireAuth, postHandler.DeletePost)
	api.Post("/posts/:id/save", requireAuth, postHandler.SavePost)

	api.Get("/chats", requireAuth, chatHandler.ListChats)
	api.Post("/chats", requireAuth, chatHandler.CreateChat)
	api.Get("/chats/:id", requireAuth, chatHandler.GetChat)
	api.Put("/chats/:id/read", requireAuth, chatHandler.ReadChat)
	api.Post("/chats/:id/messages", requireAuth, chatHandler.AddMessage)

	api.Delete("/admin/users/:userId", requireAuth, adminHandler.DeleteUser)

	return app, db, mgr
}

func seedUser(t *testing.T, db *gorm.DB, username string, admin bool) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "irrelevant",
		IsAdmin:      admin,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed user %s: %v", username, err)
	}
	return user
}

func seedPost(t *testing.T, db *gorm.DB, ownerID, title string) *models.Post {
	t.Helper()

	post := &models.Post{
		UserID:   ownerID,
		Title:    title,
		Price:    900,
		City:     "springfield",
		Type:     "rent",
		Property: "apartment",
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("Failed to seed post: %v", err)
	}
	if err := db.Create(&models.PostDetail{PostID: post.ID, Description: "seeded"}).Error; err != nil {
		t.Fatalf("Failed to seed post detail: %v", err)
	}
	return post
}

func tokenFor(t *testing.T, mgr *auth.Manager, userID string) string {
	t.Helper()

	token, err := mgr.Generate(userID)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return result
}

func TestRegisterAndLogin(t *testing.T) {
	app, _, _ := setupApp(t)

	req := jsonRequest("POST", "/api/auth/register", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "correct-horse",
	})
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}

	var tokenCookie bool
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "token" && cookie.Value != "" {
			tokenCookie = true
		}
	}
	if !tokenCookie {
		t.Error("Expected a token cookie on registration")
	}

	req = jsonRequest("POST", "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "correct-horse",
	})
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	req = jsonRequest("POST", "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	})
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.StatusCode)
	}
}

func TestGetPostAnonymous(t *testing.T) {
	app, db, _ := setupApp(t)

	owner := seedUser(t, db, "owner", false)
	post := seedPost(t, db, owner.ID, "public listing")

	req := httptest.NewRequest("GET", "/api/posts/"+post.ID, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	result := decodeBody(t, resp)
	if result["isSaved"] != false {
		t.Errorf("Expected isSaved=false for anonymous viewer, got %v", result["isSaved"])
	}
}

func TestGetPostInvalidCredential(t *testing.T) {
	app, db, _ := setupApp(t)

	owner := seedUser(t, db, "owner", false)
	post := seedPost(t, db, owner.ID, "public listing")

	// A bad credential on a public route is rejected, not ignored.
	req := httptest.NewRequest("GET", "/api/posts/"+post.ID, nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.StatusCode)
	}

	result := decodeBody(t, resp)
	if result["type"] != "INVALID_CREDENTIAL" {
		t.Errorf("Expected INVALID_CREDENTIAL error type, got %v", result["type"])
	}
}

func TestGetPostSavedForViewer(t *testing.T) {
	app, db, mgr := setupApp(t)

	owner := seedUser(t, db, "owner", false)
	viewer := seedUser(t, db, "viewer", false)
	post := seedPost(t, db, owner.ID, "bookmarked listing")
	if err := db.Create(&models.SavedPost{UserID: viewer.ID, PostID: post.ID}).Error; err != nil {
		t.Fatalf("Failed to seed saved post: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/posts/"+post.ID, nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tokenFor(t, mgr, viewer.ID)})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	result := decodeBody(t, resp)
	if result["isSaved"] != true {
		t.Errorf("Expected isSaved=true for the saving viewer, got %v", result["isSaved"])
	}
}

func TestCreatePostRequiresAuth(t *testing.T) {
	app, _, _ := setupApp(t)

	req := jsonRequest("POST", "/api/posts", map[string]interface{}{
		"title": "unauthenticated", "price": 100,
		"city": "x", "type": "buy", "property": "house",
	})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.StatusCode)
	}
}

func TestCreatePost(t *testing.T) {
	app, db, mgr := setupApp(t)

	owner := seedUser(t, db, "owner", false)

	req := jsonRequest("POST", "/api/posts", map[string]interface{}{
		"title":    "new listing",
		"price":    "2500",
		"images":   []string{"a.jpg"},
		"city":     "springfield",
		"bedroom":  2,
		"type":     "buy",
		"property": "house",
		"postDetail": map[string]interface{}{
			"desc": "sunny",
			"size": 80,
		},
	})
	req.AddCookie(&http.Cookie{Name: "token", Value: tokenFor(t, mgr, owner.ID)})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}

	result := decodeBody(t, resp)
	if result["userId"] != owner.ID {
		t.Errorf("Expected the caller as owner, got %v", result["userId"])
	}
	// Price arrives as a JSON string and is stored numerically.
	if result["price"] != float64(2500) {
		t.Errorf("Expected price 2500, got %v", result["price"])
	}
}

func TestDeletePostByNonOwner(t *testing.T) {
	app, db, mgr := setupApp(t)

	owner := seedUser(t, db, "owner", false)
	intruder := seedUser(t, db, "intruder", false)
	post := seedPost(t, db, owner.ID, "protected listing")

	req := httptest.NewRequest("DELETE", "/api/posts/"+post.ID, nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tokenFor(t, mgr, intruder.ID)})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.StatusCode)
	}

	var remaining int64
	db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&remaining)
	if remaining != 1 {
		t.Error("Post should survive a denied deletion")
	}
}

func TestDeletePostByOwner(t *testing.T) {
	app, db, mgr := setupApp(t)

	owner := seedUser(t, db, "owner", false)
	post := seedPost(t, db, owner.ID, "doomed listing")

	req := httptest.NewRequest("DELETE", "/api/posts/"+post.ID, nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tokenFor(t, mgr, owner.ID)})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var remaining int64
	db.Model(&models.PostDetail{}).Where("post_id = ?", post.ID).Count(&remaining)
	if remaining != 0 {
		t.Error("Detail row should be removed with its post")
	}
}

func TestAdminDeleteUser(t *testing.T) {
	app, db, mgr := setupApp(t)

	admin := seedUser(t, db, "admin", true)
	regular := seedUser(t, db, "regular", false)
	target := seedUser(t, db, "target", false)
	seedPost(t, db, target.ID, "target listing")

	// A non-admin actor is denied.
	req := httptest.NewRequest("DELETE", "/api/admin/users/"+target.ID, nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tokenFor(t, mgr, regular.ID)})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("DELETE", "/api/admin/users/"+target.ID, nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tokenFor(t, mgr, admin.ID)})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var remaining int64
	db.Model(&models.User{}).Where("id = ?", target.ID).Count(&remaining)
	if remaining != 0 {
		t.Error("Target user should be gone")
	}
	db.Model(&models.Post{}).Where("user_id = ?", target.ID).Count(&remaining)
	if remaining != 0 {
		t.Error("Target's posts should be gone")
	}

	// A retry of the same deletion reports not found, not a fault.
	req = httptest.NewRequest("DELETE", "/api/admin/users/"+target.ID, nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tokenFor(t, mgr, admin.ID)})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected status 404 on retry, got %d", resp.StatusCode)
	}
}

func TestChatReadFlow(t *testing.T) {
	app, db, mgr := setupApp(t)

	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	eve := seedUser(t, db, "eve", false)

	chat := &models.Chat{User1ID: alice.ID, User2ID: bob.ID}
	if err := db.Create(chat).Error; err != nil {
		t.Fatalf("Failed to seed chat: %v", err)
	}

	req := httptest.NewRequest("PUT", "/api/chats/"+chat.ID+"/read", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tokenFor(t, mgr, alice.ID)})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	result := decodeBody(t, resp)
	seenBy, ok := result["seenBy"].([]interface{})
	if !ok || len(seenBy) != 1 || seenBy[0] != alice.ID {
		t.Errorf("Expected seenBy=[%s], got %v", alice.ID, result["seenBy"])
	}

	// Non-participants cannot mark a chat seen.
	req = httptest.NewRequest("PUT", "/api/chats/"+chat.ID+"/read", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tokenFor(t, mgr, eve.ID)})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("PUT", "/api/chats/no-such-chat/read", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tokenFor(t, mgr, alice.ID)})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}

func TestChatMessageFlow(t *testing.T) {
	app, db, mgr := setupApp(t)

	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)

	req := jsonRequest("POST", "/api/chats", map[string]string{"receiverId": bob.ID})
	req.AddCookie(&http.Cookie{Name: "token", Value: tokenFor(t, mgr, alice.ID)})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}
	chatID, _ := decodeBody(t, resp)["id"].(string)
	if chatID == "" {
		t.Fatal("Expected a chat id")
	}

	req = jsonRequest("POST", "/api/chats/"+chatID+"/messages", map[string]string{"text": "hi bob"})
	req.AddCookie(&http.Cookie{Name: "token", Value: tokenFor(t, mgr, alice.ID)})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}

	// Reading the chat returns the message and marks it seen for bob.
	req = httptest.NewRequest("GET", "/api/chats/"+chatID, nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tokenFor(t, mgr, bob.ID)})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	result := decodeBody(t, resp)
	messages, ok := result["messages"].([]interface{})
	if !ok || len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %v", result["messages"])
	}
	seenBy, ok := result["seenBy"].([]interface{})
	if !ok || len(seenBy) != 1 || seenBy[0] != bob.ID {
		t.Errorf("Expected seenBy=[%s], got %v", bob.ID, result["seenBy"])
	}
}
