package postgresql

import (
	"context"

	"github.com/guidely/automator/pkg/persistence/sqlbase"
)

func (p *Persistence) migrate(ctx context.Context) error {
	return sqlbase.NewMigrationManager(p.logger, p.db, migrations()).RunMigrations(ctx)
}

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE automators (
				id UUID PRIMARY KEY,
				team_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status VARCHAR(50) NOT NULL CHECK (status IN ('draft', 'published')),
				definition JSONB NOT NULL DEFAULT '{"nodes":[],"edges":[],"viewport":{"x":0,"y":0,"zoom":1}}',
				created_by VARCHAR(255) NOT NULL DEFAULT '',
				updated_by VARCHAR(255) NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_automators_team_id ON automators(team_id);
			CREATE INDEX idx_automators_status ON automators(status);
			CREATE INDEX idx_automators_created_at ON automators(created_at);
			CREATE INDEX idx_automators_deleted_at ON automators(deleted_at);
		`,
	}
}
