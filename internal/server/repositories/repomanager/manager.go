package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/artvault/internal/dbx"
	"github.com/dmitrijs2005/artvault/internal/server/repositories/rewards"
	"github.com/dmitrijs2005/artvault/internal/server/repositories/submissions"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Submissions(db dbx.DBTX) submissions.Repository
	Rewards(db dbx.DBTX) rewards.Repository
}
