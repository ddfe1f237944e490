package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"flm/internal/app/server"
	"flm/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		DataEncryptionKey:  "6368616e676520746869732070617373776f726420746f206120736563726574",
		FrontendDir:        "frontend/dist",
		Environment:        "test",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		AllowPublicApply:   true,
		EmailFrom:          "no-reply@test.local",
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
	}
}

func TestIntakeToPaymentJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	applicantEmail := fmt.Sprintf("applicant-%d@example.com", time.Now().UnixNano())
	applicationID := submitApplication(t, client, ts.URL, applicantEmail)

	reviewApplication(t, client, ts.URL, adminToken, applicationID, "SHORTLISTED")
	reviewApplication(t, client, ts.URL, adminToken, applicationID, "INTERVIEW")

	accepted := acceptApplication(t, client, ts.URL, adminToken, applicationID)
	if accepted.FreelancerID == "" || accepted.RosterID == "" {
		t.Fatalf("expected freelancer and roster ids, got %+v", accepted)
	}
	if accepted.TemporaryPassword == "" {
		t.Fatal("expected temporary password when email delivery is disabled")
	}

	freelancerToken := login(t, client, ts.URL, applicantEmail, accepted.TemporaryPassword)
	profile := getObject(t, client, ts.URL+"/api/v1/portal/profile", freelancerToken)
	if rosterID, _ := profile["rosterId"].(string); rosterID != accepted.RosterID {
		t.Fatalf("expected portal profile roster id %s, got %v", accepted.RosterID, profile["rosterId"])
	}

	projectID := createHourlyProject(t, client, ts.URL, adminToken)
	assignFreelancer(t, client, ts.URL, adminToken, projectID, accepted.FreelancerID)

	createPerformanceRecord(t, client, ts.URL, adminToken, accepted.FreelancerID, projectID)

	calc := getObject(t, client, ts.URL+"/api/v1/tiering/calculate/"+accepted.FreelancerID, adminToken)
	recommended, _ := calc["recommended"].(map[string]any)
	if recommended == nil {
		t.Fatalf("expected tier recommendation, got %v", calc)
	}
	applyTier(t, client, ts.URL, adminToken, accepted.FreelancerID, recommended)

	payCalc := calculatePayment(t, client, ts.URL, adminToken, accepted.FreelancerID)
	lineItems, _ := payCalc["lineItems"].([]any)
	if len(lineItems) == 0 {
		t.Fatalf("expected billable line items, got %v", payCalc)
	}
	total, _ := payCalc["totalAmount"].(float64)
	if total != 810.00 {
		t.Fatalf("expected total 810.00 for 40.5 hours at 20.00, got %.2f", total)
	}

	paymentID := createPayment(t, client, ts.URL, adminToken, accepted.FreelancerID, payCalc)

	status := updatePaymentStatus(t, client, ts.URL, adminToken, paymentID, map[string]any{"status": "APPROVED"})
	if status != "APPROVED" {
		t.Fatalf("expected payment status APPROVED, got %s", status)
	}
	status = updatePaymentStatus(t, client, ts.URL, adminToken, paymentID, map[string]any{
		"status":          "PAID",
		"paymentMethod":   "BANK_TRANSFER",
		"referenceNumber": "TXN-12345",
	})
	if status != "PAID" {
		t.Fatalf("expected payment status PAID, got %s", status)
	}

	requestStatus(t, client, http.MethodDelete, ts.URL+"/api/v1/payments/"+paymentID, adminToken, nil, http.StatusConflict)

	statement := rawGet(t, client, ts.URL+"/api/v1/payments/"+paymentID+"/statement", adminToken)
	if ct := statement.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected PDF statement, got content type %s", ct)
	}
	statement.Body.Close()

	myPayments := getObject(t, client, ts.URL+"/api/v1/portal/payments", freelancerToken)
	if total, _ := myPayments["total"].(float64); total != 1 {
		t.Fatalf("expected one payment in the portal, got %v", myPayments["total"])
	}

	dashboard := getObject(t, client, ts.URL+"/api/v1/reports/dashboard", adminToken)
	if count, _ := dashboard["totalFreelancers"].(float64); count < 1 {
		t.Fatalf("expected dashboard to count freelancers, got %v", dashboard)
	}
}

func TestFreelancerCannotAccessAdminEndpoints(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	applicantEmail := fmt.Sprintf("rbac-%d@example.com", time.Now().UnixNano())
	applicationID := submitApplication(t, client, ts.URL, applicantEmail)
	accepted := acceptApplication(t, client, ts.URL, adminToken, applicationID)

	freelancerToken := login(t, client, ts.URL, applicantEmail, accepted.TemporaryPassword)

	requestStatus(t, client, http.MethodGet, ts.URL+"/api/v1/applications", freelancerToken, nil, http.StatusForbidden)
	requestStatus(t, client, http.MethodGet, ts.URL+"/api/v1/payments", freelancerToken, nil, http.StatusForbidden)
	requestStatus(t, client, http.MethodPost, ts.URL+"/api/v1/tiering/calculate-all", freelancerToken, map[string]any{}, http.StatusForbidden)
	requestStatus(t, client, http.MethodGet, ts.URL+"/api/v1/audit", freelancerToken, nil, http.StatusForbidden)

	requestStatus(t, client, http.MethodGet, ts.URL+"/api/v1/applications", "", nil, http.StatusUnauthorized)
}

type acceptResult struct {
	FreelancerID      string `json:"freelancerId"`
	RosterID          string `json:"rosterId"`
	Email             string `json:"email"`
	TemporaryPassword string `json:"temporaryPassword"`
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func submitApplication(t *testing.T, client *http.Client, baseURL, email string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/applications/apply", "", map[string]any{
		"firstName":           "Journey",
		"lastName":            "Tester",
		"email":               email,
		"country":             "Portugal",
		"timezone":            "Europe/Lisbon",
		"annotationTypes":     "bounding_box,polygon",
		"annotationTools":     "CVAT",
		"languageProficiency": "fluent",
		"yearsExperience":     3,
		"availabilityType":    "FULL_TIME",
		"hoursPerWeek":        40,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode application response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected application id")
	}
	if status, _ := payload["status"].(string); status != "PENDING" {
		t.Fatalf("expected new application status PENDING, got %s", status)
	}
	return id
}

func reviewApplication(t *testing.T, client *http.Client, baseURL, token, applicationID, status string) {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/applications/"+applicationID+"/review", token, map[string]any{
		"status": status,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode review response: %v", err)
	}
	if got, _ := payload["status"].(string); got != status {
		t.Fatalf("expected application status %s, got %s", status, got)
	}
}

func acceptApplication(t *testing.T, client *http.Client, baseURL, token, applicationID string) acceptResult {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/applications/"+applicationID+"/accept", token, map[string]any{})
	var result acceptResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		t.Fatalf("failed to decode accept response: %v", err)
	}
	return result
}

func createHourlyProject(t *testing.T, client *http.Client, baseURL, token string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/projects", token, map[string]any{
		"code":                 fmt.Sprintf("PRJ-%d", time.Now().UnixNano()),
		"name":                 "Street Scene Annotation",
		"client":               "Acme Motors",
		"paymentModel":         "HOURLY",
		"status":               "ACTIVE",
		"hourlyRateAnnotation": 20.00,
		"hourlyRateReview":     28.00,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode project response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected project id")
	}
	return id
}

func assignFreelancer(t *testing.T, client *http.Client, baseURL, token, projectID, freelancerID string) {
	t.Helper()
	postJSON(t, client, baseURL+"/api/v1/projects/"+projectID+"/assignments", token, map[string]any{
		"freelancerId": freelancerID,
		"role":         "ANNOTATION",
	})
}

func createPerformanceRecord(t *testing.T, client *http.Client, baseURL, token, freelancerID, projectID string) {
	t.Helper()
	now := time.Now().UTC()
	resp := postJSON(t, client, baseURL+"/api/v1/performance/records", token, map[string]any{
		"freelancerId":      freelancerID,
		"projectId":         projectID,
		"recordType":        "MONTHLY",
		"recordDate":        now.Format(time.RFC3339),
		"hoursWorked":       40.5,
		"tasksCompleted":    120,
		"comResponsibility": 4.5,
		"comCommitment":     4.0,
		"comInitiative":     4.5,
		"comWillingness":    5.0,
		"comCommunication":  4.0,
		"qualSpeed":         4.5,
		"qualAccuracy":      4.5,
		"qualAttention":     4.0,
		"qualUnderstanding": 4.5,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode performance record response: %v", err)
	}
	if payload["overallScore"] == nil {
		t.Fatal("expected derived overall score")
	}
}

func applyTier(t *testing.T, client *http.Client, baseURL, token, freelancerID string, recommended map[string]any) {
	t.Helper()
	postJSON(t, client, baseURL+"/api/v1/tiering/apply/"+freelancerID, token, map[string]any{
		"tier":   recommended["tier"],
		"grade":  recommended["grade"],
		"reason": "Journey test classification",
	})
}

func calculatePayment(t *testing.T, client *http.Client, baseURL, token, freelancerID string) map[string]any {
	t.Helper()
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	resp := postJSON(t, client, baseURL+"/api/v1/payments/calculate", token, map[string]any{
		"freelancerId": freelancerID,
		"periodStart":  start.Format("2006-01-02"),
		"periodEnd":    end.Format("2006-01-02"),
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode payment calculation: %v", err)
	}
	return payload
}

func createPayment(t *testing.T, client *http.Client, baseURL, token, freelancerID string, calc map[string]any) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/payments", token, map[string]any{
		"freelancerId": freelancerID,
		"year":         calc["year"],
		"month":        calc["month"],
		"periodStart":  calc["periodStart"],
		"periodEnd":    calc["periodEnd"],
		"lineItems":    calc["lineItems"],
		"totalAmount":  calc["totalAmount"],
		"notes":        "Journey test payment",
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode payment response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected payment id")
	}
	if status, _ := payload["status"].(string); status != "PENDING" {
		t.Fatalf("expected new payment status PENDING, got %s", status)
	}
	return id
}

func updatePaymentStatus(t *testing.T, client *http.Client, baseURL, token, paymentID string, body map[string]any) string {
	t.Helper()
	resp := doJSON(t, client, http.MethodPatch, baseURL+"/api/v1/payments/"+paymentID+"/status", token, body)
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode payment status response: %v", err)
	}
	status, _ := payload["status"].(string)
	return status
}

func getObject(t *testing.T, client *http.Client, url, token string) map[string]any {
	t.Helper()
	resp := getJSON(t, client, url, token)
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode response from %s: %v", url, err)
	}
	return payload
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, token, body)
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d from %s %s: %s", resp.StatusCode, method, url, string(raw))
	}
	return env
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d from GET %s: %s", resp.StatusCode, url, string(raw))
	}
	return env
}

func requestStatus(t *testing.T, client *http.Client, method, url, token string, body any, want int) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d from %s %s, got %d: %s", want, method, url, resp.StatusCode, string(raw))
	}
}

func rawGet(t *testing.T, client *http.Client, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("unexpected status %d from GET %s: %s", resp.StatusCode, url, string(raw))
	}
	return resp
}
