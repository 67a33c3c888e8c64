package services

import (
	"testing"

	"github.com/teamhq/teamhq/internal/models"
	"github.com/teamhq/teamhq/pkg/response"
	"gorm.io/gorm"
)

// managedTeam creates a team with a promoted manager, the minimum setup for
// the request lifecycle.
func managedTeam(t *testing.T, db *gorm.DB) (*models.Team, *models.User) {
	t.Helper()

	team := createTestTeam(t, db, "alpha")
	manager := createTestUser(t, db, "mgr", models.RoleManager, &team.ID)
	return team, manager
}

func TestTeamRequestCreate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTeamRequestService(db)

	team, _ := managedTeam(t, db)
	user := createTestUser(t, db, "applicant", models.RoleUser, nil)

	request, err := svc.Create(user.ID, team.ID, "let me in")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if request.Status != models.RequestPending {
		t.Errorf("Status = %q, expected %q", request.Status, models.RequestPending)
	}
	if request.Message != "let me in" {
		t.Errorf("Message = %q, expected %q", request.Message, "let me in")
	}
}

func TestTeamRequestCreate_UserAlreadyOnTeam(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTeamRequestService(db)

	team, _ := managedTeam(t, db)
	other := createTestTeam(t, db, "beta")
	user := createTestUser(t, db, "member", models.RoleUser, &other.ID)

	_, err := svc.Create(user.ID, team.ID, "")
	if !response.IsAppError(err, 409) {
		t.Errorf("expected conflict for user already on a team, got %v", err)
	}
}

func TestTeamRequestCreate_DuplicatePending(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTeamRequestService(db)

	team, _ := managedTeam(t, db)
	user := createTestUser(t, db, "applicant", models.RoleUser, nil)

	if _, err := svc.Create(user.ID, team.ID, ""); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	_, err := svc.Create(user.ID, team.ID, "")
	if !response.IsAppError(err, 409) {
		t.Errorf("expected conflict for duplicate pending request, got %v", err)
	}
}

func TestTeamRequestCreate_AllowedAgainAfterCancel(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTeamRequestService(db)

	team, _ := managedTeam(t, db)
	user := createTestUser(t, db, "applicant", models.RoleUser, nil)

	request, err := svc.Create(user.ID, team.ID, "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := svc.Cancel(request.ID, user.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	if _, err := svc.Create(user.ID, team.ID, ""); err != nil {
		t.Errorf("Create() after cancel error = %v", err)
	}
}

func TestTeamRequestCreate_AllowedAgainAfterReject(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTeamRequestService(db)

	team, manager := managedTeam(t, db)
	user := createTestUser(t, db, "applicant", models.RoleUser, nil)

	request, err := svc.Create(user.ID, team.ID, "first attempt")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Process(request.ID, manager.ID, false, "not this time"); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	// The rejected row survives with a terminal status; it must not block a
	// new pending request for the same user and team.
	again, err := svc.Create(user.ID, team.ID, "second attempt")
	if err != nil {
		t.Fatalf("Create() after rejection error = %v", err)
	}
	if again.Status != models.RequestPending {
		t.Errorf("Status = %v, expected %v", again.Status, models.RequestPending)
	}
}

func TestTeamRequestCreate_UnmanagedTeam(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTeamRequestService(db)

	team := createTestTeam(t, db, "orphan")
	user := createTestUser(t, db, "applicant", models.RoleUser, nil)

	_, err := svc.Create(user.ID, team.ID, "")
	if !response.IsAppError(err, 409) {
		t.Errorf("expected conflict for team without manager, got %v", err)
	}
}

func TestTeamRequestProcess_Approve(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTeamRequestService(db)

	team, manager := managedTeam(t, db)
	user := createTestUser(t, db, "applicant", models.RoleUser, nil)

	request, _ := svc.Create(user.ID, team.ID, "")

	processed, err := svc.Process(request.ID, manager.ID, true, "welcome")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if processed.Status != models.RequestApproved {
		t.Errorf("Status = %q, expected %q", processed.Status, models.RequestApproved)
	}
	if processed.ProcessedBy == nil || *processed.ProcessedBy != manager.ID {
		t.Errorf("ProcessedBy = %v, expected %d", processed.ProcessedBy, manager.ID)
	}
	if processed.ProcessedAt == nil {
		t.Error("ProcessedAt should be set")
	}
	if processed.Notes != "welcome" {
		t.Errorf("Notes = %q, expected %q", processed.Notes, "welcome")
	}

	updated, _ := findUser(db, user.ID)
	if updated.TeamID == nil || *updated.TeamID != team.ID {
		t.Errorf("TeamID = %v, approval should place the user on the team", updated.TeamID)
	}
}

func TestTeamRequestProcess_Reject(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTeamRequestService(db)

	team, manager := managedTeam(t, db)
	user := createTestUser(t, db, "applicant", models.RoleUser, nil)

	request, _ := svc.Create(user.ID, team.ID, "")

	processed, err := svc.Process(request.ID, manager.ID, false, "no room")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if processed.Status != models.RequestRejected {
		t.Errorf("Status = %q, expected %q", processed.Status, models.RequestRejected)
	}

	updated, _ := findUser(db, user.ID)
	if updated.TeamID != nil {
		t.Errorf("TeamID = %v, rejection should not place the user", updated.TeamID)
	}
}

func TestTeamRequestProcess_AlreadyProcessed(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTeamRequestService(db)

	team, manager := managedTeam(t, db)
	user := createTestUser(t, db, "applicant", models.RoleUser, nil)

	request, _ := svc.Create(user.ID, team.ID, "")
	if _, err := svc.Process(request.ID, manager.ID, true, ""); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	_, err := svc.Process(request.ID, manager.ID, false, "")
	if !response.IsAppError(err, 409) {
		t.Errorf("expected conflict re-processing a terminal request, got %v", err)
	}
}

func TestTeamRequestProcess_WrongTeamManager(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTeamRequestService(db)

	team, _ := managedTeam(t, db)
	otherTeam := createTestTeam(t, db, "beta")
	otherManager := createTestUser(t, db, "mgr2", models.RoleManager, &otherTeam.ID)
	user := createTestUser(t, db, "applicant", models.RoleUser, nil)

	request, _ := svc.Create(user.ID, team.ID, "")

	_, err := svc.Process(request.ID, otherManager.ID, true, "")
	if !response.IsAppError(err, 403) {
		t.Errorf("expected forbidden for another team's manager, got %v", err)
	}
}

func TestTeamRequestProcess_NonManagerForbidden(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTeamRequestService(db)

	team, _ := managedTeam(t, db)
	member := createTestUser(t, db, "member", models.RoleUser, &team.ID)
	user := createTestUser(t, db, "applicant", models.RoleUser, nil)

	request, _ := svc.Create(user.ID, team.ID, "")

	_, err := svc.Process(request.ID, member.ID, true, "")
	if !response.IsAppError(err, 403) {
		t.Errorf("expected forbidden for non-manager processor, got %v", err)
	}
}

func TestTeamRequestCancel_OnlyOwner(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTeamRequestService(db)

	team, _ := managedTeam(t, db)
	user := createTestUser(t, db, "applicant", models.RoleUser, nil)
	stranger := createTestUser(t, db, "stranger", models.RoleUser, nil)

	request, _ := svc.Create(user.ID, team.ID, "")

	err := svc.Cancel(request.ID, stranger.ID)
	if !response.IsAppError(err, 403) {
		t.Errorf("expected forbidden canceling another user's request, got %v", err)
	}
}

func TestTeamRequestCancel_TerminalRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTeamRequestService(db)

	team, manager := managedTeam(t, db)
	user := createTestUser(t, db, "applicant", models.RoleUser, nil)

	request, _ := svc.Create(user.ID, team.ID, "")
	if _, err := svc.Process(request.ID, manager.ID, false, ""); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	err := svc.Cancel(request.ID, user.ID)
	if !response.IsAppError(err, 409) {
		t.Errorf("expected conflict canceling a processed request, got %v", err)
	}
}

// Full lifecycle: promotion, join request, approval, with the audit trail in
// operation order.
func TestTeamRequestLifecycle(t *testing.T) {
	db := setupTestDB(t)
	teamSvc := NewTeamService(db)
	requestSvc := NewTeamRequestService(db)

	admin := createTestUser(t, db, "admin1", models.RoleAdmin, nil)
	team := createTestTeam(t, db, "alpha")
	candidate := createTestUser(t, db, "candidate", models.RoleUser, nil)
	applicant := createTestUser(t, db, "applicant", models.RoleUser, nil)

	if err := teamSvc.PromoteToManager(admin.ID, candidate.ID, team.ID); err != nil {
		t.Fatalf("PromoteToManager() error = %v", err)
	}

	request, err := requestSvc.Create(applicant.ID, team.ID, "joining")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := requestSvc.Process(request.ID, candidate.ID, true, "ok"); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	joined, _ := findUser(db, applicant.ID)
	if joined.TeamID == nil || *joined.TeamID != team.ID {
		t.Fatalf("TeamID = %v, expected %d", joined.TeamID, team.ID)
	}

	actions := lastAuditActions(t, db, 3)
	expected := []string{"Manager Promoted", "Team Request Created", "Team Request Approved"}
	if len(actions) != len(expected) {
		t.Fatalf("audit actions = %v, expected %v", actions, expected)
	}
	for i := range expected {
		if actions[i] != expected[i] {
			t.Errorf("audit action[%d] = %q, expected %q", i, actions[i], expected[i])
		}
	}
}

// recordingQueue captures enqueued notification tasks.
type recordingQueue struct {
	tasks []*NotifyTask
}

func (q *recordingQueue) Enqueue(task *NotifyTask) error {
	q.tasks = append(q.tasks, task)
	return nil
}
func (q *recordingQueue) IsAsync() bool { return false }
func (q *recordingQueue) Close() error { return nil }

func TestTeamRequestProcess_EnqueuesNotification(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTeamRequestService(db)
	queue := &recordingQueue{}
	svc.SetQueue(queue)

	team, manager := managedTeam(t, db)
	user := createTestUser(t, db, "applicant", models.RoleUser, nil)

	request, _ := svc.Create(user.ID, team.ID, "")
	if _, err := svc.Process(request.ID, manager.ID, true, "welcome"); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(queue.tasks) != 1 {
		t.Fatalf("enqueued tasks = %d, expected 1", len(queue.tasks))
	}
	task := queue.tasks[0]
	if task.RequestID != request.ID || task.UserID != user.ID || task.TeamID != team.ID {
		t.Errorf("task = %+v, ids do not match request", task)
	}
	if !task.Approved {
		t.Error("task.Approved should be true")
	}
	if task.Notes != "welcome" {
		t.Errorf("task.Notes = %q, expected %q", task.Notes, "welcome")
	}
}
