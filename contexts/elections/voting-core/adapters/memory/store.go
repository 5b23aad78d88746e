package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
	"ballotbox/contexts/elections/voting-core/ports"

	"github.com/google/uuid"
)

// Store is a single-process implementation of every voting-core port. One
// mutex guards all maps, which makes ConsumeToken a true compare-and-swap.
type Store struct {
	mu sync.RWMutex

	tokens     map[string]entities.VoterToken
	ballots    map[string]entities.Ballot
	votes      map[string]entities.Vote
	outbox     outboxLog
	eventDedup map[string]reservation
}

func NewStore(ballots []entities.Ballot) *Store {
	items := make(map[string]entities.Ballot, len(ballots))
	for _, ballot := range ballots {
		items[strings.TrimSpace(ballot.BallotID)] = cloneBallot(ballot)
	}
	return &Store{
		tokens:     make(map[string]entities.VoterToken),
		ballots:    items,
		votes:      make(map[string]entities.Vote),
		eventDedup: make(map[string]reservation),
	}
}

func tokenKey(electionID string, tokenHash string) string {
	return strings.TrimSpace(electionID) + "\x00" + strings.TrimSpace(tokenHash)
}

func (s *Store) CreateTokens(_ context.Context, tokens []entities.VoterToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		key := tokenKey(token.ElectionID, token.TokenHash)
		if _, exists := s.tokens[key]; exists {
			return domainerrors.ErrDuplicateToken
		}
		if _, exists := batch[key]; exists {
			return domainerrors.ErrDuplicateToken
		}
		batch[key] = struct{}{}
	}
	for _, token := range tokens {
		s.tokens[tokenKey(token.ElectionID, token.TokenHash)] = cloneToken(token)
	}
	return nil
}

func (s *Store) LookupToken(_ context.Context, electionID string, tokenHash string) (entities.VoterToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[tokenKey(electionID, tokenHash)]
	if !ok {
		return entities.VoterToken{}, domainerrors.ErrTokenNotFound
	}
	return cloneToken(token), nil
}

func (s *Store) ConsumeToken(
	_ context.Context,
	electionID string,
	tokenHash string,
	usedAt time.Time,
) (entities.VoterToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tokenKey(electionID, tokenHash)
	token, ok := s.tokens[key]
	if !ok || token.Used || token.Expired(usedAt) {
		return entities.VoterToken{}, domainerrors.ErrTokenNotFound
	}
	at := usedAt.UTC()
	token.Used = true
	token.UsedAt = &at
	s.tokens[key] = token
	return cloneToken(token), nil
}

func (s *Store) GetBallot(_ context.Context, ballotID string) (entities.Ballot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ballot, ok := s.ballots[strings.TrimSpace(ballotID)]
	if !ok {
		return entities.Ballot{}, domainerrors.ErrBallotNotFound
	}
	return cloneBallot(ballot), nil
}

func (s *Store) SaveBallot(_ context.Context, ballot entities.Ballot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ballots[strings.TrimSpace(ballot.BallotID)] = cloneBallot(ballot)
	return nil
}

func (s *Store) InsertVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.votes[vote.VoteID]; exists {
		return domainerrors.ErrConflict
	}
	vote.OptionIDs = append([]string(nil), vote.OptionIDs...)
	s.votes[vote.VoteID] = vote
	return nil
}

func (s *Store) ListVotesByBallot(_ context.Context, electionID string, ballotID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	electionID = strings.TrimSpace(electionID)
	ballotID = strings.TrimSpace(ballotID)
	items := make([]entities.Vote, 0)
	for _, vote := range s.votes {
		if vote.ElectionID != electionID || vote.BallotID != ballotID {
			continue
		}
		vote.OptionIDs = append([]string(nil), vote.OptionIDs...)
		items = append(items, vote)
	}
	slices.SortFunc(items, func(a, b entities.Vote) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.VoteID, b.VoteID))
	})
	return items, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func cloneToken(token entities.VoterToken) entities.VoterToken {
	if token.UsedAt != nil {
		at := *token.UsedAt
		token.UsedAt = &at
	}
	if token.ExpiresAt != nil {
		at := *token.ExpiresAt
		token.ExpiresAt = &at
	}
	return token
}

func cloneBallot(ballot entities.Ballot) entities.Ballot {
	ballot.Options = append([]entities.BallotOption(nil), ballot.Options...)
	return ballot
}

var (
	_ ports.TokenStore       = (*Store)(nil)
	_ ports.BallotRepository = (*Store)(nil)
	_ ports.VoteRepository   = (*Store)(nil)
	_ ports.OutboxWriter     = (*Store)(nil)
	_ ports.OutboxRepository = (*Store)(nil)
	_ ports.EventDedupStore  = (*Store)(nil)
	_ ports.Clock            = (*Store)(nil)
	_ ports.IDGenerator      = (*Store)(nil)
)
