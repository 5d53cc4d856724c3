package model

import "time"

// LoginMetadata is the latest login context recorded for an account.
type LoginMetadata struct {
	UserID    string    `db:"user_id" bson:"_id" json:"userId"`
	IP        string    `db:"ip" bson:"ip" json:"ip"`
	UserAgent string    `db:"user_agent" bson:"user_agent" json:"userAgent"`
	Device    Device    `db:"-" bson:"device" json:"device"`
	CreatedAt time.Time `db:"created_at" bson:"created_at" json:"createdAt"`
}

type Device struct {
	Type    string `bson:"type" json:"type"`
	Browser string `bson:"browser" json:"browser"`
	OS      string `bson:"os" json:"os"`
}

// AccountOverview is an account with its latest login metadata, as listed to admins.
type AccountOverview struct {
	*Identity
	LatestMetadata *LoginMetadata `json:"latestMetadata"`
}
