package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
	"ballotbox/contexts/elections/voting-core/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository implements the voting-core ports on gorm. It targets Postgres in
// production and runs unchanged on SQLite for local use and tests.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateTokens(ctx context.Context, tokens []entities.VoterToken) error {
	if len(tokens) == 0 {
		return nil
	}
	rows := make([]voterTokenModel, 0, len(tokens))
	for _, token := range tokens {
		rows = append(rows, voterTokenModelFromEntity(token))
	}
	if err := r.db.WithContext(ctx).CreateInBatches(&rows, 500).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateToken
		}
		r.logError("voting_tokens_create_failed", err, "count", len(rows))
		return storageError(err)
	}
	return nil
}

func (r *Repository) LookupToken(ctx context.Context, electionID string, tokenHash string) (entities.VoterToken, error) {
	var row voterTokenModel
	err := r.db.WithContext(ctx).
		Where("election_id = ? AND token_hash = ?", strings.TrimSpace(electionID), strings.TrimSpace(tokenHash)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoterToken{}, domainerrors.ErrTokenNotFound
		}
		r.logError("voting_token_lookup_failed", err, "election_id", electionID)
		return entities.VoterToken{}, storageError(err)
	}
	return row.toEntity(), nil
}

// ConsumeToken issues one conditional UPDATE; the database decides the race.
// Zero affected rows means the token is unknown, spent or expired, and the
// caller cannot tell which.
func (r *Repository) ConsumeToken(
	ctx context.Context,
	electionID string,
	tokenHash string,
	usedAt time.Time,
) (entities.VoterToken, error) {
	electionID = strings.TrimSpace(electionID)
	tokenHash = strings.TrimSpace(tokenHash)
	at := usedAt.UTC()

	result := r.db.WithContext(ctx).
		Model(&voterTokenModel{}).
		Where(
			"election_id = ? AND token_hash = ? AND used = ? AND (expires_at IS NULL OR expires_at >= ?)",
			electionID, tokenHash, false, at,
		).
		Updates(map[string]any{
			"used":    true,
			"used_at": at,
		})
	if result.Error != nil {
		r.logError("voting_token_consume_failed", result.Error, "election_id", electionID)
		return entities.VoterToken{}, storageError(result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.VoterToken{}, domainerrors.ErrTokenNotFound
	}

	token, err := r.LookupToken(ctx, electionID, tokenHash)
	if err != nil {
		// The update already committed; report the consumed state we wrote.
		return entities.VoterToken{
			ElectionID: electionID,
			TokenHash:  tokenHash,
			Used:       true,
			UsedAt:     &at,
		}, nil
	}
	return token, nil
}

func (r *Repository) GetBallot(ctx context.Context, ballotID string) (entities.Ballot, error) {
	var row ballotModel
	err := r.db.WithContext(ctx).
		Where("ballot_id = ?", strings.TrimSpace(ballotID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Ballot{}, domainerrors.ErrBallotNotFound
		}
		r.logError("voting_ballot_get_failed", err, "ballot_id", ballotID)
		return entities.Ballot{}, storageError(err)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveBallot(ctx context.Context, ballot entities.Ballot) error {
	row := ballotModelFromEntity(ballot)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "ballot_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"election_id",
				"title",
				"description",
				"ballot_type",
				"max_selections",
				"options",
				"is_active",
				"updated_at",
			}),
		}).
		Create(&row).
		Error
	if err != nil {
		r.logError("voting_ballot_save_failed", err, "ballot_id", ballot.BallotID)
		return storageError(err)
	}
	return nil
}

func (r *Repository) InsertVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		r.logError("voting_vote_insert_failed", err, "ballot_id", vote.BallotID)
		return storageError(err)
	}
	return nil
}

func (r *Repository) ListVotesByBallot(ctx context.Context, electionID string, ballotID string) ([]entities.Vote, error) {
	var rows []voteModel
	err := r.db.WithContext(ctx).
		Where("election_id = ? AND ballot_id = ?", strings.TrimSpace(electionID), strings.TrimSpace(ballotID)).
		Order("created_at ASC").
		Order("vote_id ASC").
		Find(&rows).
		Error
	if err != nil {
		r.logError("voting_votes_list_failed", err, "ballot_id", ballotID)
		return nil, storageError(err)
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) {
	fields := []any{
		"event", event,
		"module", "elections/voting-core",
		"layer", "adapter",
		"error", err.Error(),
	}
	fields = append(fields, attrs...)
	r.logger.Error("voting-core repository operation failed", fields...)
}

func storageError(err error) error {
	return fmt.Errorf("%w: %w", domainerrors.ErrStorageUnavailable, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var (
	_ ports.TokenStore       = (*Repository)(nil)
	_ ports.BallotRepository = (*Repository)(nil)
	_ ports.VoteRepository   = (*Repository)(nil)
	_ ports.OutboxWriter     = (*Repository)(nil)
	_ ports.OutboxRepository = (*Repository)(nil)
	_ ports.EventDedupStore  = (*Repository)(nil)
)
