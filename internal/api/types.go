package api

// MembershipType is the club membership tier.
type MembershipType string

const (
	MembershipBasic   MembershipType = "basic"
	MembershipPremium MembershipType = "premium"
	MembershipElite   MembershipType = "elite"
)

// MembershipTypes lists the tiers in ascending order.
var MembershipTypes = []MembershipType{MembershipBasic, MembershipPremium, MembershipElite}

// Valid reports whether t is one of the known tiers.
func (t MembershipType) Valid() bool {
	for _, known := range MembershipTypes {
		if t == known {
			return true
		}
	}
	return false
}

// MembershipStatus is the state of a member's subscription.
type MembershipStatus string

const (
	StatusActive   MembershipStatus = "active"
	StatusInactive MembershipStatus = "inactive"
	StatusExpired  MembershipStatus = "expired"
)

// User is the profile of a club member.
type User struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	MemberID         string           `json:"memberId"`
	MembershipType   MembershipType   `json:"membershipType"`
	MembershipStatus MembershipStatus `json:"membershipStatus"`
	JoinDate         Timestamp        `json:"joinDate"`
	Avatar           string           `json:"avatar,omitempty"`
	QRCode           string           `json:"qrCode,omitempty"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Password       string         `json:"password"`
	MembershipType MembershipType `json:"membershipType"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// ProfileUpdate is the body of PUT /auth/profile. Nil fields are left
// unchanged by the server.
type ProfileUpdate struct {
	Name           *string         `json:"name,omitempty"`
	Email          *string         `json:"email,omitempty"`
	MembershipType *MembershipType `json:"membershipType,omitempty"`
	Avatar         *string         `json:"avatar,omitempty"`
}

// EventFilter selects events by lifecycle.
type EventFilter string

const (
	EventsAll      EventFilter = "all"
	EventsUpcoming EventFilter = "upcoming"
	EventsPrevious EventFilter = "previous"
)

// EventResults summarises a finished event.
type EventResults struct {
	Winner       string `json:"winner,omitempty"`
	Participants int    `json:"participants"`
	Completed    bool   `json:"completed"`
}

// Event is a club event as listed by GET /events.
type Event struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"name"`
	Description          string        `json:"description"`
	Date                 string        `json:"date"`
	Time                 string        `json:"time"`
	Type                 string        `json:"type"`
	Location             string        `json:"location"`
	MaxCapacity          int           `json:"maxCapacity"`
	MemberOnly           bool          `json:"memberOnly"`
	Price                float64       `json:"price"`
	RegistrationDeadline string        `json:"registrationDeadline"`
	Status               string        `json:"status"`
	Registrations        int           `json:"registrations"`
	Results              *EventResults `json:"results,omitempty"`
}

// Post is a community forum post.
type Post struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	AuthorID  string `json:"authorId"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Likes     int    `json:"likes"`
	Comments  int    `json:"comments"`
	Timestamp string `json:"timestamp"`
}

// NewPost is the body of POST /community/posts.
type NewPost struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CommunityStats is returned by GET /community/stats.
type CommunityStats struct {
	TotalMembers  int `json:"totalMembers"`
	TotalPosts    int `json:"totalPosts"`
	TotalComments int `json:"totalComments"`
	TotalLikes    int `json:"totalLikes"`
}

// Plan is a membership plan.
type Plan struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Duration string   `json:"duration"`
	Features []string `json:"features"`
	Popular  bool     `json:"popular"`
}

// MembershipStats is returned by GET /membership/stats.
type MembershipStats struct {
	TotalMembers    int `json:"totalMembers"`
	ActiveEvents    int `json:"activeEvents"`
	CompletedEvents int `json:"completedEvents"`
	TrainingHours   int `json:"trainingHours"`
}

// PlanDetails summarises the plan behind a member card.
type PlanDetails struct {
	Name     string   `json:"name"`
	Features []string `json:"features"`
	Price    float64  `json:"price"`
}

// MemberCard is the digital membership card of the current user.
type MemberCard struct {
	MemberID         string           `json:"memberId"`
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	MembershipType   MembershipType   `json:"membershipType"`
	MembershipStatus MembershipStatus `json:"membershipStatus"`
	JoinDate         Timestamp        `json:"joinDate"`
	QRCode           string           `json:"qrCode"`
	PlanDetails      PlanDetails      `json:"planDetails"`
	ValidUntil       string           `json:"validUntil,omitempty"`
}

// SubscribeRequest is the body of POST /membership/subscribe.
type SubscribeRequest struct {
	PlanID string `json:"planId"`
}

// Subscription confirms a plan change.
type Subscription struct {
	Message  string  `json:"message"`
	PlanName string  `json:"planName"`
	PlanID   string  `json:"planId"`
	Price    float64 `json:"price"`
	QRCode   string  `json:"qrCode"`
}

// CardRenewal is returned by POST /membership/generate-card.
type CardRenewal struct {
	Message  string `json:"message"`
	QRCode   string `json:"qrCode"`
	MemberID string `json:"memberId"`
}

// AccessCode is returned by POST /auth/qr-generate. Data is the text
// encoded in the QR image and is what a scanner submits.
type AccessCode struct {
	QRCode  string `json:"qrCode"`
	Data    string `json:"data"`
	Message string `json:"message"`
}

// ScanRequest is the body of POST /qr/scan.
type ScanRequest struct {
	QRCode string `json:"qrCode"`
}

// ScanResult is the outcome of a QR check-in.
type ScanResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
}

// VerifyRequest is the body of POST /qr/verify.
type VerifyRequest struct {
	MemberID string `json:"memberId"`
}

// AccessCheck is the outcome of a facility access check.
type AccessCheck struct {
	Valid          bool           `json:"valid"`
	Message        string         `json:"message"`
	MembershipType MembershipType `json:"membershipType,omitempty"`
	Name           string         `json:"name,omitempty"`
}

// Overview is the data shown on the home view.
type Overview struct {
	Plans    []Plan
	Upcoming []Event
	Stats    MembershipStats
}
