package rest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AlexJaimeH/narra-sub000/internal/domain"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/model"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/ports/repository"
)

// Ensure implementations satisfy the interfaces.
var (
	_ repository.ProfileRepository         = (*profileRepo)(nil)
	_ repository.ManagementTokenRepository = (*managementTokenRepo)(nil)
)

type profileRepo struct {
	client *Client
}

func NewProfileRepo(client *Client) repository.ProfileRepository {
	return &profileRepo{client: client}
}

type profileRow struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Tier        string    `json:"tier"`
	CreatedAt   time.Time `json:"created_at"`
}

type settingsRow struct {
	ProfileID         string    `json:"profile_id"`
	Language          string    `json:"language"`
	AIAssistEnabled   bool      `json:"ai_assist_enabled"`
	AuthorDisplayName string    `json:"author_display_name"`
	StoriesPublished  int       `json:"stories_published"`
	CreatedAt         time.Time `json:"created_at"`
}

func (r *profileRepo) Insert(ctx context.Context, p *model.Profile) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	row := profileRow{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Tier:        p.Tier,
		CreatedAt:   p.CreatedAt,
	}
	return r.client.Insert(ctx, "profiles", row, nil)
}

func (r *profileRepo) InsertSettings(ctx context.Context, s *model.ProfileSettings) error {
	row := settingsRow{
		ProfileID:         s.ProfileID,
		Language:          s.Language,
		AIAssistEnabled:   s.AIAssistEnabled,
		AuthorDisplayName: s.AuthorDisplayName,
		StoriesPublished:  s.StoriesPublished,
		CreatedAt:         s.CreatedAt,
	}
	return r.client.Insert(ctx, "profile_settings", row, nil)
}

type managementTokenRepo struct {
	client *Client
}

func NewManagementTokenRepo(client *Client) repository.ManagementTokenRepository {
	return &managementTokenRepo{client: client}
}

type managementTokenRow struct {
	ID         string    `json:"id"`
	Token      string    `json:"token"`
	AccountID  string    `json:"account_id"`
	BuyerEmail string    `json:"buyer_email"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r *managementTokenRepo) Insert(ctx context.Context, t *model.ManagementToken) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	row := managementTokenRow{
		ID:         t.ID,
		Token:      t.Token,
		AccountID:  t.AccountID,
		BuyerEmail: t.BuyerEmail,
		CreatedAt:  t.CreatedAt,
	}
	return r.client.Insert(ctx, "management_tokens", row, nil)
}

func (r *managementTokenRepo) FindByToken(ctx context.Context, token string) (*model.ManagementToken, error) {
	var rows []managementTokenRow
	if err := r.client.Select(ctx, "management_tokens", map[string]string{"token": token}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	row := rows[0]
	return &model.ManagementToken{
		ID:         row.ID,
		Token:      row.Token,
		AccountID:  row.AccountID,
		BuyerEmail: row.BuyerEmail,
		CreatedAt:  row.CreatedAt,
	}, nil
}
