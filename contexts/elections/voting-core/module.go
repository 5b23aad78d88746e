package votingcore

import (
	"log/slog"
	"time"

	"ballotbox/contexts/elections/voting-core/adapters/hashing"
	httpadapter "ballotbox/contexts/elections/voting-core/adapters/http"
	"ballotbox/contexts/elections/voting-core/adapters/memory"
	postgresadapter "ballotbox/contexts/elections/voting-core/adapters/postgres"
	"ballotbox/contexts/elections/voting-core/application/commands"
	"ballotbox/contexts/elections/voting-core/application/queries"
	"ballotbox/contexts/elections/voting-core/domain/entities"
	"ballotbox/contexts/elections/voting-core/domain/rules"
	"ballotbox/contexts/elections/voting-core/domain/tally"
	"ballotbox/contexts/elections/voting-core/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Tokens      ports.TokenStore
	Ballots     ports.BallotRepository
	Votes       ports.VoteRepository
	Outbox      ports.OutboxWriter
	Hasher      ports.TokenHasher
	Generator   ports.TokenGenerator
	Rules       rules.Registry
	Tallies     tally.Registry
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Metrics     ports.Metrics
	TokenTTL    time.Duration
	BatchLimit  int
	Prevalidate bool
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	if deps.Hasher == nil {
		deps.Hasher = hashing.SHA256{}
	}
	if deps.Generator == nil {
		deps.Generator = hashing.RandomTokens{}
	}
	if deps.IDGen == nil {
		deps.IDGen = postgresadapter.UUIDGenerator{}
	}
	if deps.Rules.Empty() {
		deps.Rules = rules.NewRegistry()
	}
	if deps.Tallies.Empty() {
		deps.Tallies = tally.NewRegistry()
	}

	castUseCase := commands.CastVoteUseCase{
		Tokens:      deps.Tokens,
		Ballots:     deps.Ballots,
		Votes:       deps.Votes,
		Outbox:      deps.Outbox,
		Hasher:      deps.Hasher,
		Rules:       deps.Rules,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Metrics:     deps.Metrics,
		Prevalidate: deps.Prevalidate,
		Logger:      deps.Logger,
	}
	issueUseCase := commands.IssueTokensUseCase{
		Tokens:     deps.Tokens,
		Outbox:     deps.Outbox,
		Hasher:     deps.Hasher,
		Generator:  deps.Generator,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Metrics:    deps.Metrics,
		DefaultTTL: deps.TokenTTL,
		BatchLimit: deps.BatchLimit,
		Logger:     deps.Logger,
	}
	checkUseCase := queries.CheckTokenUseCase{
		Tokens:  deps.Tokens,
		Hasher:  deps.Hasher,
		Clock:   deps.Clock,
		Metrics: deps.Metrics,
		Logger:  deps.Logger,
	}
	tallyUseCase := queries.TallyUseCase{
		Ballots:    deps.Ballots,
		Votes:      deps.Votes,
		Strategies: deps.Tallies,
		Clock:      deps.Clock,
		Metrics:    deps.Metrics,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Cast:   castUseCase,
			Issue:  issueUseCase,
			Check:  checkUseCase,
			Tally:  tallyUseCase,
			Logger: deps.Logger,
		},
	}
}

// NewInMemoryModule wires every port to one memory.Store seeded with ballots.
func NewInMemoryModule(ballots []entities.Ballot, logger *slog.Logger) Module {
	store := memory.NewStore(ballots)
	module := NewModule(Dependencies{
		Tokens:  store,
		Ballots: store,
		Votes:   store,
		Outbox:  store,
		Clock:   store,
		IDGen:   store,
		Logger:  logger,
	})
	module.Store = store
	return module
}
