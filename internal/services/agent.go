package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/sheetshare-backend/internal/data/db"
	"github.com/yungbote/sheetshare-backend/internal/data/repos"
	types "github.com/yungbote/sheetshare-backend/internal/domain"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/admindir"
	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
	"github.com/yungbote/sheetshare-backend/internal/platform/passhash"
)

const (
	minUsernameLength         = 3
	minRegisterPasswordLength = 8
	minChangePasswordLength   = 6
)

type RegisterAgentInput struct {
	CustomerID int64
	Username   string
	Password   string
}

type UpdateProfileInput struct {
	Username        string
	CurrentPassword string
	NewPassword     string
}

type AgentProfile struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	IsActive    bool   `json:"is_active"`
	ManagerID   int64  `json:"manager_id"`
	ManagerName string `json:"manager_name,omitempty"`
}

type AgentService interface {
	Register(dbc dbctx.Context, in RegisterAgentInput) (*types.Agent, error)
	UsernameExists(dbc dbctx.Context, username string) (bool, error)

	// Administrator operations on the caller's own agents.
	List(dbc dbctx.Context) ([]*types.Agent, error)
	SetActive(dbc dbctx.Context, agentID int64, active bool) (*types.Agent, error)
	Delete(dbc dbctx.Context, agentID int64) error
	ChangePassword(dbc dbctx.Context, agentID int64, newPassword string) error

	// Agent self-service.
	Profile(dbc dbctx.Context) (*AgentProfile, error)
	UpdateProfile(dbc dbctx.Context, in UpdateProfileInput) (*AgentProfile, error)
}

type agentService struct {
	db        *gorm.DB
	log       *logger.Logger
	agentRepo repos.AgentRepo
	shareRepo repos.ShareGrantRepo
	directory admindir.Directory
}

func NewAgentService(db *gorm.DB, log *logger.Logger, agentRepo repos.AgentRepo, shareRepo repos.ShareGrantRepo, directory admindir.Directory) AgentService {
	return &agentService{
		db:        db,
		log:       log.With("service", "AgentService"),
		agentRepo: agentRepo,
		shareRepo: shareRepo,
		directory: directory,
	}
}

func (s *agentService) Register(dbc dbctx.Context, in RegisterAgentInput) (*types.Agent, error) {
	username := strings.TrimSpace(in.Username)
	if in.CustomerID <= 0 {
		return nil, apierr.Validationf("invalid_customer_id", "customer id is required")
	}
	if len(username) < minUsernameLength {
		return nil, apierr.Validationf("invalid_username", "username must be at least %d characters", minUsernameLength)
	}
	if len(in.Password) < minRegisterPasswordLength {
		return nil, apierr.Validationf("invalid_password", "password must be at least %d characters", minRegisterPasswordLength)
	}
	if s.directory != nil {
		if _, err := s.directory.Lookup(dbc.Ctx, in.CustomerID); err != nil {
			return nil, apierr.Validationf("unknown_customer", "customer %d is not registered", in.CustomerID)
		}
	}

	exists, err := s.agentRepo.UsernameExists(dbc, username, 0)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, apierr.Conflictf("username_taken", "username already exists")
	}
	hash, err := passhash.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.agentRepo.Create(dbc, []*types.Agent{{
		ManagerID:    in.CustomerID,
		Username:     username,
		PasswordHash: hash,
		IsActive:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apierr.Conflictf("username_taken", "username already exists")
		}
		return nil, fmt.Errorf("create agent: %w", err)
	}
	s.log.Info("Agent registered, pending approval", "agent_id", created[0].ID, "manager_id", in.CustomerID)
	return created[0], nil
}

func (s *agentService) UsernameExists(dbc dbctx.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, apierr.Validationf("invalid_username", "username is required")
	}
	return s.agentRepo.UsernameExists(dbc, username, 0)
}

func (s *agentService) List(dbc dbctx.Context) ([]*types.Agent, error) {
	p, err := requireAdministrator(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	return s.agentRepo.ListByManager(dbc, p.ID)
}

// ownedAgent loads an agent of the calling administrator. Agents of other
// managers are reported as not found.
func (s *agentService) ownedAgent(dbc dbctx.Context, agentID int64) (*types.Agent, error) {
	p, err := requireAdministrator(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	agent, err := s.agentRepo.GetByID(dbc, agentID)
	if err != nil {
		return nil, fmt.Errorf("load agent: %w", err)
	}
	if agent == nil || agent.ManagerID != p.ID {
		return nil, apierr.NotFoundf("agent_not_found", "user not found")
	}
	return agent, nil
}

func (s *agentService) SetActive(dbc dbctx.Context, agentID int64, active bool) (*types.Agent, error) {
	agent, err := s.ownedAgent(dbc, agentID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.agentRepo.UpdateFields(dbc, agent.ID, map[string]interface{}{
		"is_active":  active,
		"updated_at": now,
	}); err != nil {
		return nil, fmt.Errorf("update agent: %w", err)
	}
	agent.IsActive = active
	agent.UpdatedAt = now
	return agent, nil
}

// Delete removes the account and its sharing grants. Cells the agent wrote
// stay on their sheets.
func (s *agentService) Delete(dbc dbctx.Context, agentID int64) error {
	agent, err := s.ownedAgent(dbc, agentID)
	if err != nil {
		return err
	}
	return withTx(s.db, dbc, func(dbc dbctx.Context) error {
		if _, err := s.shareRepo.DeleteByUserIDs(dbc, []int64{agent.ID}); err != nil {
			return fmt.Errorf("delete agent grants: %w", err)
		}
		if err := s.agentRepo.DeleteByIDs(dbc, []int64{agent.ID}); err != nil {
			return fmt.Errorf("delete agent: %w", err)
		}
		return nil
	})
}

func (s *agentService) ChangePassword(dbc dbctx.Context, agentID int64, newPassword string) error {
	if len(newPassword) < minChangePasswordLength {
		return apierr.Validationf("invalid_password", "password must be at least %d characters", minChangePasswordLength)
	}
	agent, err := s.ownedAgent(dbc, agentID)
	if err != nil {
		return err
	}
	hash, err := passhash.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.agentRepo.UpdateFields(dbc, agent.ID, map[string]interface{}{
		"password_hash":       hash,
		"password_requested":  false,
		"password_request_at": nil,
		"updated_at":          time.Now().UTC(),
	})
}

func (s *agentService) Profile(dbc dbctx.Context) (*AgentProfile, error) {
	p, err := requireAgent(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	agent, err := s.agentRepo.GetByID(dbc, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load agent: %w", err)
	}
	if agent == nil {
		return nil, apierr.NotFoundf("agent_not_found", "user not found")
	}
	return s.profileOf(dbc.Ctx, agent), nil
}

func (s *agentService) UpdateProfile(dbc dbctx.Context, in UpdateProfileInput) (*AgentProfile, error) {
	p, err := requireAgent(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	username := strings.TrimSpace(in.Username)
	if len(username) < minUsernameLength {
		return nil, apierr.Validationf("invalid_username", "username must be at least %d characters", minUsernameLength)
	}

	var out *types.Agent
	err = withTx(s.db, dbc, func(dbc dbctx.Context) error {
		agent, err := s.agentRepo.GetByID(dbc, p.ID)
		if err != nil {
			return fmt.Errorf("load agent: %w", err)
		}
		if agent == nil {
			return apierr.NotFoundf("agent_not_found", "user not found")
		}
		updates := map[string]interface{}{"updated_at": time.Now().UTC()}
		if username != agent.Username {
			taken, err := s.agentRepo.UsernameExists(dbc, username, agent.ID)
			if err != nil {
				return fmt.Errorf("check username: %w", err)
			}
			if taken {
				return apierr.Conflictf("username_taken", "username already taken")
			}
			updates["username"] = username
			agent.Username = username
		}
		if in.CurrentPassword != "" && in.NewPassword != "" {
			if !passhash.Verify(in.CurrentPassword, agent.PasswordHash) {
				return apierr.Validationf("incorrect_password", "current password is incorrect")
			}
			if len(in.NewPassword) < minChangePasswordLength {
				return apierr.Validationf("invalid_password", "new password must be at least %d characters", minChangePasswordLength)
			}
			hash, err := passhash.Hash(in.NewPassword)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			updates["password_hash"] = hash
			agent.PasswordHash = hash
		}
		if err := s.agentRepo.UpdateFields(dbc, agent.ID, updates); err != nil {
			if db.IsUniqueViolation(err) {
				return apierr.Conflictf("username_taken", "username already taken")
			}
			return fmt.Errorf("update agent: %w", err)
		}
		out = agent
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.profileOf(dbc.Ctx, out), nil
}

func (s *agentService) profileOf(ctx context.Context, agent *types.Agent) *AgentProfile {
	prof := &AgentProfile{
		ID:        agent.ID,
		Username:  agent.Username,
		IsActive:  agent.IsActive,
		ManagerID: agent.ManagerID,
	}
	if s.directory != nil {
		if admin, err := s.directory.Lookup(ctx, agent.ManagerID); err == nil {
			prof.ManagerName = admin.Name
			if prof.ManagerName == "" {
				prof.ManagerName = admin.Email
			}
		}
	}
	return prof
}
