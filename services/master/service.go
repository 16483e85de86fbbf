// File: services/master/service.go

// Package master manages practitioner profiles: intake, styled descriptions,
// slot publication, and deactivation. Free-text intake goes through the
// interpreter when one is configured and falls back to deterministic parsing
// when it is not, or when it fails — registration never depends on a model
// being reachable.
package master

import (
	"context"
	"errors"
	"fmt"
	"time"

	"concierge/database/repository"
	"concierge/models"
	"concierge/services/interpreter"
	"concierge/utils"

	"go.uber.org/zap"
)

var (
	// ErrAlreadyRegistered means the telegram id already owns a profile.
	ErrAlreadyRegistered = errors.New("master already registered")
	// ErrNotFound means no profile exists for the telegram id.
	ErrNotFound = errors.New("master not found")
	// ErrNoSlots means the slot text yielded nothing usable.
	ErrNoSlots = errors.New("no valid future slots in input")
)

// MasterService is the profile lifecycle API.
type MasterService interface {
	Register(ctx context.Context, telegramID, intakeText string) (*models.Master, error)
	GetProfile(ctx context.Context, telegramID string) (*models.Master, error)
	ListActive(ctx context.Context) ([]models.Master, error)
	UpdateDescription(ctx context.Context, telegramID, description string) (*models.Master, error)
	AddSlots(ctx context.Context, telegramID, slotText string) ([]models.Slot, error)
	Deactivate(ctx context.Context, telegramID string) error
}

// DefaultMasterService implements MasterService.
type DefaultMasterService struct {
	Masters         repository.MasterRepository
	Interpreter     interpreter.Interpreter
	DefaultLocation string
	Now             func() time.Time
}

func (s *DefaultMasterService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Register creates a profile from free-text intake. Slots mentioned in the
// intake are published immediately; past ones are dropped.
func (s *DefaultMasterService) Register(ctx context.Context, telegramID, intakeText string) (*models.Master, error) {
	profile := s.extractProfile(ctx, intakeText)
	now := s.now()

	master := &models.Master{
		TelegramID:         telegramID,
		Name:               profile.Name,
		Services:           profile.Services,
		LocationPreference: profile.LocationPreference,
		Description:        intakeText,
		TimeSlots:          s.keepFuture(profile.Slots, now),
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if s.Interpreter != nil {
		styled, err := s.Interpreter.StyleDescription(ctx, intakeText, profile)
		if err != nil {
			utils.GetLogger().Warn("Styling failed, keeping raw description",
				zap.String("telegram_id", telegramID), zap.Error(err))
		} else {
			master.StyledDescription = styled
		}
	}

	if err := s.Masters.Create(ctx, master); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntity) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create master: %w", err)
	}
	utils.GetLogger().Info("Master registered",
		zap.String("telegram_id", telegramID),
		zap.Int("slots", len(master.TimeSlots)))
	return master, nil
}

// GetProfile returns the profile for a telegram id.
func (s *DefaultMasterService) GetProfile(ctx context.Context, telegramID string) (*models.Master, error) {
	master, err := s.Masters.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return master, nil
}

// ListActive returns every active master.
func (s *DefaultMasterService) ListActive(ctx context.Context) ([]models.Master, error) {
	return s.Masters.GetAllActive(ctx)
}

// UpdateDescription replaces the raw description and restyles it.
func (s *DefaultMasterService) UpdateDescription(ctx context.Context, telegramID, description string) (*models.Master, error) {
	master, err := s.GetProfile(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	master.Description = description
	master.StyledDescription = ""
	if s.Interpreter != nil {
		profile := &interpreter.Profile{Name: master.Name, Services: master.Services}
		if styled, err := s.Interpreter.StyleDescription(ctx, description, profile); err == nil {
			master.StyledDescription = styled
		}
	}
	master.UpdatedAt = s.now()

	if err := s.Masters.Update(ctx, master); err != nil {
		return nil, fmt.Errorf("update master: %w", err)
	}
	return master, nil
}

// AddSlots parses slot text and publishes the valid future slots it yields.
func (s *DefaultMasterService) AddSlots(ctx context.Context, telegramID, slotText string) ([]models.Slot, error) {
	if _, err := s.GetProfile(ctx, telegramID); err != nil {
		return nil, err
	}

	now := s.now()
	var slots []models.Slot
	if s.Interpreter != nil {
		parsed, err := s.Interpreter.ExtractSlots(ctx, slotText, now)
		if err != nil {
			utils.GetLogger().Warn("Slot extraction failed, using literal parse",
				zap.String("telegram_id", telegramID), zap.Error(err))
		} else {
			slots = parsed
		}
	}
	if slots == nil {
		slots = interpreter.FallbackSlots(slotText, s.DefaultLocation)
	}

	slots = s.keepFuture(slots, now)
	if len(slots) == 0 {
		return nil, ErrNoSlots
	}

	if err := s.Masters.AddSlots(ctx, telegramID, slots); err != nil {
		return nil, fmt.Errorf("add slots: %w", err)
	}
	return slots, nil
}

// Deactivate hides the master from booking without deleting history.
func (s *DefaultMasterService) Deactivate(ctx context.Context, telegramID string) error {
	if err := s.Masters.Deactivate(ctx, telegramID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *DefaultMasterService) extractProfile(ctx context.Context, text string) *interpreter.Profile {
	if s.Interpreter == nil {
		return interpreter.FallbackProfile(text)
	}
	profile, err := s.Interpreter.ExtractProfile(ctx, text)
	if err != nil {
		utils.GetLogger().Warn("Profile extraction failed, using fallback", zap.Error(err))
		return interpreter.FallbackProfile(text)
	}
	return profile
}

// keepFuture drops malformed and already-started slots.
func (s *DefaultMasterService) keepFuture(slots []models.Slot, now time.Time) []models.Slot {
	var out []models.Slot
	for _, slot := range slots {
		if slot.Validate() != nil {
			continue
		}
		startsAt, err := slot.StartsAt(now.Location())
		if err != nil || !startsAt.After(now) {
			continue
		}
		if slot.Location == "" {
			slot.Location = s.DefaultLocation
		}
		out = append(out, slot)
	}
	return out
}
