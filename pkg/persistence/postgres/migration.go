package postgres

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create cases table
			CREATE TABLE cases (
				id VARCHAR(255) PRIMARY KEY,
				state VARCHAR(50) NOT NULL DEFAULT 'REFERRAL_RECEIVED',
				journey_stage VARCHAR(50),
				data JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_cases_state ON cases(state);
			CREATE INDEX idx_cases_journey_stage ON cases(journey_stage);
			CREATE INDEX idx_cases_updated_at ON cases(updated_at);

			-- Create caregivers table
			CREATE TABLE caregivers (
				id VARCHAR(255) PRIMARY KEY,
				city VARCHAR(255),
				active BOOLEAN NOT NULL DEFAULT TRUE,
				data JSONB NOT NULL
			);

			CREATE INDEX idx_caregivers_city ON caregivers(city);
			CREATE INDEX idx_caregivers_active ON caregivers(active);

			-- Create assignments table
			CREATE TABLE assignments (
				id VARCHAR(255) PRIMARY KEY,
				case_id VARCHAR(255) NOT NULL,
				caregiver_id VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL,
				scheduled_date TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_assignments_case_id ON assignments(case_id);
			CREATE INDEX idx_assignments_caregiver_id ON assignments(caregiver_id);
			CREATE INDEX idx_assignments_status ON assignments(status);

			-- Create journey_events table. The primary key enforces the
			-- stage-once invariant per case.
			CREATE TABLE journey_events (
				case_id VARCHAR(255) NOT NULL,
				stage VARCHAR(50) NOT NULL,
				at TIMESTAMP WITH TIME ZONE NOT NULL,
				source VARCHAR(255),
				note TEXT,
				PRIMARY KEY (case_id, stage)
			);

			CREATE INDEX idx_journey_events_case_id ON journey_events(case_id);
		`,
	}
}
