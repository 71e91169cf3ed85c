package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// CreateCommissionsTable creates the commissions table
func CreateCommissionsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_commissions_table",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS commissions (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					lead_id UUID NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
					agent_id UUID NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
					referrer_id UUID REFERENCES agents(id) ON DELETE SET NULL,
					loan_amount DECIMAL(15,2) NOT NULL,
					max_commission DECIMAL(15,2) NOT NULL,
					referrer_commission DECIMAL(15,2) DEFAULT 0,
					agent_commission DECIMAL(15,2) DEFAULT 0,
					status VARCHAR(20) NOT NULL DEFAULT 'Pending',
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_commissions_lead_id ON commissions(lead_id);
				CREATE INDEX idx_commissions_agent_id ON commissions(agent_id);
				CREATE INDEX idx_commissions_referrer_id ON commissions(referrer_id);
				CREATE INDEX idx_commissions_status ON commissions(status);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS commissions").Error
		},
	}
}
