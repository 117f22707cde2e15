package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"strings"
	"time"
)

type Store struct {
	DB *sql.DB
}

type CampaignRow struct {
	ID                 int64
	CampaignID         string
	Platform           string
	Objective          string
	Budget             float64
	Status             string
	ExternalCampaignID string
	CreatedAt          time.Time
	PublishedAt        *time.Time
}

type CampaignStats struct {
	Ads        int
	MediaTotal int
}

func New(db *sql.DB) *Store { return &Store{DB: db} }

func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) InsertCampaign(ctx context.Context, tx *sql.Tx, campaignID, platform, objective string, budget float64) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
	INSERT INTO campaigns (campaign_id,platform,objective,budget,status)
	VALUES ($1,$2,$3,$4,'created') RETURNING id`,
		campaignID, platform, objective, budget).Scan(&id)
	return id, err
}

func (s *Store) InsertAd(ctx context.Context, tx *sql.Tx, campaignID, adID, name string, mediaCount int) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO ads (campaign_id, ad_id, name, media_count)
		VALUES ($1,$2,$3,$4) RETURNING id
	`, campaignID, adID, name, mediaCount).Scan(&id)
	return id, err
}

func (s *Store) SetCampaignStatus(ctx context.Context, campaignID, status string) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE campaigns SET status=$1 WHERE campaign_id=$2
	`, status, campaignID)
	return err
}

// MarkCampaignPublished is applied by the status worker when the publish
// event arrives. It is idempotent for redelivered events.
func (s *Store) MarkCampaignPublished(ctx context.Context, tx *sql.Tx, campaignID, externalID string, publishedAt time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE campaigns
		   SET status='published', external_campaign_id=$1, published_at=$2
		 WHERE campaign_id=$3
	`, externalID, publishedAt, campaignID)
	return err
}

func (s *Store) InsertPublishEvent(ctx context.Context, tx *sql.Tx, campaignID, externalID, platform string, publishedAt time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO publish_events (campaign_id, external_campaign_id, platform, published_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (campaign_id, published_at) DO NOTHING
	`, campaignID, externalID, platform, publishedAt)
	return err
}

func (s *Store) GetCampaign(ctx context.Context, campaignID string) (CampaignRow, error) {
	var c CampaignRow
	var external sql.NullString
	var published sql.NullTime
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, campaign_id, platform, objective, budget, status, external_campaign_id, created_at, published_at
		FROM campaigns
		WHERE campaign_id = $1
	`, campaignID).Scan(&c.ID, &c.CampaignID, &c.Platform, &c.Objective, &c.Budget, &c.Status, &external, &c.CreatedAt, &published)
	if err != nil {
		return CampaignRow{}, err
	}
	c.ExternalCampaignID = external.String
	if published.Valid {
		t := published.Time
		c.PublishedAt = &t
	}
	return c, nil
}

func (s *Store) GetCampaignStats(ctx context.Context, campaignID string) (CampaignStats, error) {
	var st CampaignStats
	err := s.DB.QueryRowContext(ctx, `
		SELECT
		  COUNT(*)                        AS ads,
		  COALESCE(SUM(media_count), 0)   AS media_total
		FROM ads
		WHERE campaign_id = $1
	`, campaignID).Scan(&st.Ads, &st.MediaTotal)
	if err != nil {
		return CampaignStats{}, err
	}
	return st, nil
}

func (s *Store) ListCampaigns(ctx context.Context, limit, offset int) ([]CampaignRow, []CampaignStats, error) {
	if limit <= 0 || limit > 1000 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, campaign_id, platform, objective, budget, status, external_campaign_id, created_at, published_at
		FROM campaigns
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var campaigns []CampaignRow
	var ids []string
	for rows.Next() {
		var c CampaignRow
		var external sql.NullString
		var published sql.NullTime
		if err := rows.Scan(&c.ID, &c.CampaignID, &c.Platform, &c.Objective, &c.Budget, &c.Status, &external, &c.CreatedAt, &published); err != nil {
			return nil, nil, err
		}
		c.ExternalCampaignID = external.String
		if published.Valid {
			t := published.Time
			c.PublishedAt = &t
		}
		campaigns = append(campaigns, c)
		ids = append(ids, c.CampaignID)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if len(campaigns) == 0 {
		return campaigns, []CampaignStats{}, nil
	}

	statRows, err := s.DB.QueryContext(ctx, `
		SELECT campaign_id,
		       COUNT(*)                      AS ads,
		       COALESCE(SUM(media_count),0)  AS media_total
		FROM ads
		WHERE campaign_id = ANY($1)
		GROUP BY campaign_id
	`, textSlice(ids))
	if err != nil {
		return nil, nil, err
	}
	defer statRows.Close()

	statsByID := make(map[string]CampaignStats, len(ids))
	for statRows.Next() {
		var id string
		var st CampaignStats
		if err := statRows.Scan(&id, &st.Ads, &st.MediaTotal); err != nil {
			return nil, nil, err
		}
		statsByID[id] = st
	}
	if err := statRows.Err(); err != nil {
		return nil, nil, err
	}

	out := make([]CampaignStats, len(campaigns))
	for i, c := range campaigns {
		out[i] = statsByID[c.CampaignID]
	}
	return campaigns, out, nil
}

type textSlice []string

func (a textSlice) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, v := range a {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v))
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String(), nil
}
