package db

import "time"

// Incident maps public.incidents. It mirrors the canonical incidents
// document one column per field.
type Incident struct {
	ID                int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	ArticleDate       string `gorm:"column:article_date;type:text;not null;default:''"`
	School            string `gorm:"column:school;type:text;not null;default:''"`
	SchoolType        string `gorm:"column:school_type;type:text;not null;default:'';index:idx_incidents_school_type"`
	State             string `gorm:"column:state;type:text;not null;default:'';index:idx_incidents_state"`
	Region            string `gorm:"column:region;type:text;not null;default:'';index:idx_incidents_region"`
	Source            string `gorm:"column:source;type:text;not null;default:''"`
	OffenseDate       string `gorm:"column:offense_date;type:text;not null;default:''"`
	Time              string `gorm:"column:time;type:text;not null;default:''"`
	LawEnforcement    string `gorm:"column:law_enforcement;type:text;not null;default:''"`
	ThreatType        string `gorm:"column:threat_type;type:text;not null;default:'';index:idx_incidents_threat_type"`
	Conveyance        string `gorm:"column:conveyance;type:text;not null;default:'';index:idx_incidents_conveyance"`
	WhoThreatened     string `gorm:"column:who_threatened;type:text;not null;default:''"`
	IncidentDetails   string `gorm:"column:incident_details;type:text;not null;default:''"`
	LockdownType      string `gorm:"column:lockdown_type;type:text;not null;default:''"`
	Evacuation        string `gorm:"column:evacuation;type:text;not null;default:''"`
	ClassesCancelled  string `gorm:"column:classes_cancelled;type:text;not null;default:''"`
	Precautions       string `gorm:"column:precautions;type:text;not null;default:''"`
	Weapons           string `gorm:"column:weapons;type:text;not null;default:''"`
	Gender            string `gorm:"column:gender;type:text;not null;default:''"`
	Charged           string `gorm:"column:charged;type:text;not null;default:''"`
	Custody           string `gorm:"column:custody;type:text;not null;default:'';index:idx_incidents_custody"`
	Charges           string `gorm:"column:charges;type:text;not null;default:''"`
	Bond              string `gorm:"column:bond;type:text;not null;default:''"`
	AdditionalSources string `gorm:"column:additional_sources;type:text;not null;default:''"`
}

func (Incident) TableName() string { return "incidents" }

// DedupDecision maps public.dedup_decisions, one row per resolved or
// automatic match in the dedup log.
type DedupDecision struct {
	MatchID             int64      `gorm:"column:match_id;primaryKey;autoIncrement:false"`
	DecidedAt           time.Time  `gorm:"column:decided_at;type:timestamptz;not null"`
	ReviewedAt          *time.Time `gorm:"column:reviewed_at;type:timestamptz"`
	Decision            string     `gorm:"column:decision;type:text;not null;index:idx_dedup_decisions_decision"`
	Confidence          float64    `gorm:"column:confidence;type:double precision;not null"`
	ExistingIncidentID  int64      `gorm:"column:existing_incident_id;type:bigint;not null;index:idx_dedup_decisions_existing"`
	CandidateSchool     string     `gorm:"column:candidate_school;type:text;not null;default:''"`
	CandidateState      string     `gorm:"column:candidate_state;type:text;not null;default:''"`
	CandidateDate       string     `gorm:"column:candidate_date;type:text;not null;default:''"`
	CandidateThreatType string     `gorm:"column:candidate_threat_type;type:text;not null;default:''"`
	CandidateDetails    string     `gorm:"column:candidate_details;type:text;not null;default:''"`
	SchoolNameScore     float64    `gorm:"column:school_name_score;type:double precision;not null"`
	StateScore          float64    `gorm:"column:state_score;type:double precision;not null"`
	DateScore           float64    `gorm:"column:date_score;type:double precision;not null"`
	ThreatTypeScore     float64    `gorm:"column:threat_type_score;type:double precision;not null"`
}

func (DedupDecision) TableName() string { return "dedup_decisions" }

func autoMigrateModels() []any {
	return []any{
		&Incident{},
		&DedupDecision{},
	}
}
