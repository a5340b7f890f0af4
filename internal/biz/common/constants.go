package common

import "math"

// Profile field limits
const (
	MinNameLen     = 3
	MaxNameLen     = 64
	MaxDescLen     = 256
	MaxURILen      = 256
	MaxCategories  = 5
	MaxCategoryLen = 32
)

// Rating bounds
const (
	MinRating uint8 = 1
	MaxRating uint8 = 5
)

// Fee bounds, in basis points
const MaxFeeBps uint16 = 10000

// Anti-abuse windows, in seconds. The feedback cooldown is measured
// against the host clock, not the submitted timestamp, so a rater cannot
// shorten it by backdating submissions.
const (
	FeedbackCooldownSecs = 3600
	MaxTimestampAgeSecs  = 86400
	CloseCooloffSecs     = 7 * 86400
)

// MaxAgentCount is the terminal value of the agent counter; registration
// fails once it is reached so agent ids are never reused by wraparound.
const MaxAgentCount = math.MaxUint64

// Event topic constants
const (
	TopicAgentRegistered   = "bazaar.events.agent_registered"
	TopicFeedbackSubmitted = "bazaar.events.feedback_submitted"
)
