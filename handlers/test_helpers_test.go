package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"storehub-backend/middleware"
	"storehub-backend/models"
	"storehub-backend/status"
	"storehub-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")

	var err error
	testDB, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	// Limit to 1 open connection to prevent SQLite concurrent access issues
	// with in-memory databases.
	sqlDB, _ := testDB.DB()
	sqlDB.SetMaxOpenConns(1)

	// Create tables using raw SQLite-compatible SQL instead of AutoMigrate,
	// because the GORM model tags use PostgreSQL-specific defaults like gen_random_uuid().
	if err := createSQLiteTables(testDB); err != nil {
		panic("failed to migrate test database: " + err.Error())
	}

	code := m.Run()
	os.Exit(code)
}

// freshDB returns a clean database for each test by deleting all rows.
func freshDB() *gorm.DB {
	// Delete in correct order to respect foreign keys
	testDB.Exec("DELETE FROM store_statuses")
	testDB.Exec("DELETE FROM opening_periods")
	testDB.Exec("DELETE FROM stores")
	testDB.Exec("DELETE FROM vendors")
	testDB.Exec("DELETE FROM users")
	return testDB
}

func createSQLiteTables(db *gorm.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS "users" (
			"id" TEXT PRIMARY KEY,
			"email" TEXT NOT NULL UNIQUE,
			"password" TEXT NOT NULL,
			"name" TEXT,
			"role" TEXT DEFAULT 'customer',
			"vendor_id" TEXT,
			"phone" TEXT,
			"is_blocked" INTEGER DEFAULT 0,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_deleted_at ON "users"("deleted_at")`,
		`CREATE INDEX IF NOT EXISTS idx_users_vendor_id ON "users"("vendor_id")`,

		`CREATE TABLE IF NOT EXISTS "vendors" (
			"id" TEXT PRIMARY KEY,
			"name" TEXT NOT NULL,
			"slug" TEXT NOT NULL UNIQUE,
			"owner_id" TEXT NOT NULL,
			"email" TEXT,
			"phone" TEXT,
			"max_branches" INTEGER DEFAULT 3,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME,
			CONSTRAINT fk_vendors_owner FOREIGN KEY ("owner_id") REFERENCES "users"("id")
		)`,
		`CREATE INDEX IF NOT EXISTS idx_vendors_deleted_at ON "vendors"("deleted_at")`,

		`CREATE TABLE IF NOT EXISTS "stores" (
			"id" TEXT PRIMARY KEY,
			"vendor_id" TEXT NOT NULL,
			"name" TEXT NOT NULL,
			"slug" TEXT NOT NULL UNIQUE,
			"manager_name" TEXT,
			"phone" TEXT,
			"email" TEXT,
			"description" TEXT,
			"city" TEXT,
			"latitude" REAL NOT NULL,
			"longitude" REAL NOT NULL,
			"delivery_radius" REAL DEFAULT 5,
			"min_order_value" REAL DEFAULT 0,
			"rating" REAL DEFAULT 0,
			"preparing_time" INTEGER DEFAULT 0,
			"is_drive_thru" INTEGER DEFAULT 0,
			"is_main" INTEGER DEFAULT 0,
			"is_active" INTEGER DEFAULT 1,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME,
			CONSTRAINT fk_stores_vendor FOREIGN KEY ("vendor_id") REFERENCES "vendors"("id")
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stores_deleted_at ON "stores"("deleted_at")`,
		`CREATE INDEX IF NOT EXISTS idx_stores_vendor_id ON "stores"("vendor_id")`,

		`CREATE TABLE IF NOT EXISTS "opening_periods" (
			"id" TEXT PRIMARY KEY,
			"store_id" TEXT NOT NULL,
			"weekday" INTEGER NOT NULL,
			"start" TEXT,
			"end" TEXT,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			CONSTRAINT fk_opening_periods_store FOREIGN KEY ("store_id") REFERENCES "stores"("id")
		)`,
		`CREATE INDEX IF NOT EXISTS idx_opening_periods_store_id ON "opening_periods"("store_id")`,
		`CREATE INDEX IF NOT EXISTS idx_opening_periods_weekday ON "opening_periods"("weekday")`,

		`CREATE TABLE IF NOT EXISTS "store_statuses" (
			"id" TEXT PRIMARY KEY,
			"store_id" TEXT NOT NULL,
			"status" TEXT NOT NULL,
			"duration_seconds" INTEGER,
			"set_at" DATETIME NOT NULL,
			"expires_at" DATETIME NOT NULL,
			"created_at" DATETIME,
			CONSTRAINT fk_store_statuses_store FOREIGN KEY ("store_id") REFERENCES "stores"("id")
		)`,
		`CREATE INDEX IF NOT EXISTS idx_store_statuses_store_id ON "store_statuses"("store_id")`,
		`CREATE INDEX IF NOT EXISTS idx_store_statuses_set_at ON "store_statuses"("set_at")`,
	}

	for _, ddl := range tables {
		if err := db.Exec(ddl).Error; err != nil {
			return err
		}
	}
	return nil
}

// ==================== Seed Helpers ====================

// seedTestUser creates a user with a bcrypt-hashed password and returns the
// user plus a valid JWT token.
func seedTestUser(db *gorm.DB, email, role string, vendorID *uuid.UUID) (models.User, string) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)

	user := models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hashed),
		Name:     "Test User",
		Role:     role,
		VendorID: vendorID,
	}
	db.Create(&user)

	token, _ := utils.GenerateToken(user.ID, user.Email, user.Role, vendorID)
	return user, token
}

// seedVendor creates a vendor with the given branch allowance.
func seedVendor(db *gorm.DB, name string, ownerID uuid.UUID, maxBranches int) models.Vendor {
	vendor := models.Vendor{
		ID:          uuid.New(),
		Name:        name,
		Slug:        "test-vendor-" + uuid.New().String()[:8],
		OwnerID:     ownerID,
		MaxBranches: maxBranches,
	}
	db.Create(&vendor)
	return vendor
}

// seedVendorOwnerWithToken creates a vendor_owner user attached to the given
// vendor, and returns the user and a valid JWT token.
func seedVendorOwnerWithToken(db *gorm.DB, vendor models.Vendor) (models.User, string) {
	vendorID := vendor.ID
	return seedTestUser(db, "owner-"+uuid.New().String()[:8]+"@test.com", "vendor_owner", &vendorID)
}

// seedStore creates a store for the given vendor.
func seedStore(db *gorm.DB, vendorID uuid.UUID, name string) models.Store {
	store := models.Store{
		ID:             uuid.New(),
		VendorID:       vendorID,
		Name:           name,
		Slug:           "test-store-" + uuid.New().String()[:8],
		Latitude:       51.5074,
		Longitude:      -0.1278,
		DeliveryRadius: 5.0,
		IsActive:       true,
	}
	db.Create(&store)
	return store
}

// seedAlwaysOpenHours creates opening periods covering every weekday end to
// end, so resolution is "within hours" no matter when the test runs.
func seedAlwaysOpenHours(db *gorm.DB, storeID uuid.UUID) {
	start, end := "00:00", "23:59:59"
	for weekday := models.Monday; weekday <= models.Sunday; weekday++ {
		period := models.OpeningPeriod{
			ID:      uuid.New(),
			StoreID: storeID,
			Weekday: weekday,
			Start:   &start,
			End:     &end,
		}
		db.Create(&period)
	}
}

// seedNeverOpenHours creates a single opening period on a different weekday
// than today, so resolution is always "outside hours".
func seedNeverOpenHours(db *gorm.DB, storeID uuid.UUID) {
	otherWeekday := models.ISOWeekday(time.Now())%7 + 1
	start, end := "09:00", "17:00"
	period := models.OpeningPeriod{
		ID:      uuid.New(),
		StoreID: storeID,
		Weekday: otherWeekday,
		Start:   &start,
		End:     &end,
	}
	db.Create(&period)
}

// seedStatusOverride creates a status history row directly.
func seedStatusOverride(db *gorm.DB, storeID uuid.UUID, statusValue string, setAt, expiresAt time.Time) models.StoreStatus {
	row := models.StoreStatus{
		ID:        uuid.New(),
		StoreID:   storeID,
		Status:    statusValue,
		SetAt:     setAt,
		ExpiresAt: expiresAt,
	}
	db.Create(&row)
	return row
}

// ==================== Router Setup Helpers ====================

// setupStoreRouter sets up store, status, vendor, and auth routes backed by
// one shared resolver, mirroring the production wiring.
func setupStoreRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	resolver := status.NewDBResolver(db, status.NewMemory())
	authHandler := &AuthHandler{DB: db}
	storeHandler := &StoreHandler{DB: db, Resolver: resolver}
	statusHandler := &StatusHandler{DB: db, Resolver: resolver}
	vendorHandler := &VendorHandler{DB: db}

	api := r.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/stores", storeHandler.GetStores)
	api.GET("/stores/nearest", storeHandler.GetNearestStore)
	api.GET("/stores/:id", storeHandler.GetStore)
	api.GET("/stores/:id/status", storeHandler.GetStoreStatus)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	protected.GET("/auth/profile", authHandler.GetProfile)

	vendor := protected.Group("/vendor")
	vendor.Use(middleware.VendorMiddleware())
	vendor.POST("/stores", storeHandler.CreateStore)
	vendor.PUT("/stores/:id", storeHandler.UpdateStore)
	vendor.DELETE("/stores/:id", storeHandler.DeleteStore)
	vendor.GET("/stores/:id/hours", storeHandler.GetStoreHours)
	vendor.PUT("/stores/:id/hours", storeHandler.UpdateStoreHours)
	vendor.POST("/stores/:id/status", statusHandler.SetStoreStatus)
	vendor.GET("/stores/:id/status/history", statusHandler.GetStatusHistory)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	admin.GET("/stores", storeHandler.ListAllStores)
	admin.POST("/vendors", vendorHandler.CreateVendor)
	admin.GET("/vendors", vendorHandler.ListVendors)
	admin.PUT("/vendors/:id", vendorHandler.UpdateVendor)

	return r
}

// ==================== Request/Response Helpers ====================

// authRequest builds a request with a JSON body and bearer token.
func authRequest(method, url string, body interface{}, token string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// jsonRequest builds an unauthenticated request with a JSON body.
func jsonRequest(method, url string, body interface{}) *http.Request {
	return authRequest(method, url, body, "")
}

func parseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func parseResponseArray(w *httptest.ResponseRecorder) []map[string]interface{} {
	var resp []map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}
