// Package votingcore implements the anonymous one-time voter credential and
// tally core of the elections context.
//
// A credential is issued per invitee and only its hash is stored. Casting a
// vote consumes the credential with a single conditional write, validates the
// selection against the ballot's type rule and stores a vote that carries no
// reference to the credential. Tallies are recomputed from stored votes on
// demand. Ballot definitions are owned by election management and arrive as
// events; this module keeps a read-only projection of them.
package votingcore
