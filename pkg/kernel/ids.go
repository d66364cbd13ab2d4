package kernel

import "github.com/google/uuid"

// CampaignID identifies a campaign's document namespace. The service runs
// a single campaign per deployment; DefaultCampaignID is the namespace
// used unless configured otherwise.
type CampaignID string

// DefaultCampaignID is the single campaign every deployment starts with.
const DefaultCampaignID CampaignID = "default"

func NewCampaignID(id string) CampaignID { return CampaignID(id) }
func (c CampaignID) String() string      { return string(c) }
func (c CampaignID) IsEmpty() bool       { return string(c) == "" }

// TurnID identifies one player-input → narration cycle.
type TurnID string

func NewTurnID() TurnID           { return TurnID(uuid.NewString()) }
func (t TurnID) String() string   { return string(t) }
func (t TurnID) IsEmpty() bool    { return string(t) == "" }

// SnapshotID identifies a save-game snapshot.
type SnapshotID string

func NewSnapshotID() SnapshotID     { return SnapshotID(uuid.NewString()) }
func (s SnapshotID) String() string { return string(s) }
func (s SnapshotID) IsEmpty() bool  { return string(s) == "" }
