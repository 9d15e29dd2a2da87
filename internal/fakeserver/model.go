package fakeserver

// Wire representations served under /api/v1. Nullable fields are pointers so
// they encode as JSON null.

type User struct {
	UserID      int     `json:"user_id"`
	Name        string  `json:"name"`
	ORCID       *string `json:"orcid"`
	Affiliation *string `json:"affiliation"`
}

type Action struct {
	ActionID     int            `json:"action_id"`
	InstrumentID *int           `json:"instrument_id"`
	Type         string         `json:"type"`
	TypeID       int            `json:"type_id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	IsHidden     bool           `json:"is_hidden"`
	Schema       map[string]any `json:"schema"`
}

type ActionType struct {
	TypeID     int    `json:"type_id"`
	Name       string `json:"name"`
	ObjectName string `json:"object_name"`
	AdminOnly  bool   `json:"admin_only"`
}

type Instrument struct {
	InstrumentID         int    `json:"instrument_id"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	IsHidden             bool   `json:"is_hidden"`
	InstrumentScientists []int  `json:"instrument_scientists"`
}

type LogCategory struct {
	CategoryID int    `json:"category_id"`
	Title      string `json:"title"`
}

type LogEntry struct {
	LogEntryID  int           `json:"log_entry_id"`
	UTCDatetime string        `json:"utc_datetime"`
	Author      int           `json:"author"`
	Content     string        `json:"content"`
	Categories  []LogCategory `json:"categories"`
}

type LogFileAttachment struct {
	FileAttachmentID int    `json:"file_attachment_id"`
	FileName         string `json:"file_name"`
	Content          string `json:"content"`
}

type LogObjectAttachment struct {
	ObjectAttachmentID int `json:"object_attachment_id"`
	ObjectID           int `json:"object_id"`
}

type Location struct {
	LocationID       int    `json:"location_id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	ParentLocationID *int   `json:"parent_location_id"`
	TypeID           int    `json:"type_id"`
	IsHidden         bool   `json:"is_hidden"`
}

type LocationType struct {
	LocationTypeID int    `json:"location_type_id"`
	Name           string `json:"name"`
}

type Object struct {
	ObjectID  int            `json:"object_id"`
	VersionID int            `json:"version_id"`
	ActionID  int            `json:"action_id"`
	Schema    map[string]any `json:"schema"`
	Data      map[string]any `json:"data"`
}

type LocationOccurrence struct {
	ObjectID        int    `json:"object_id"`
	Location        *int   `json:"location"`
	ResponsibleUser *int   `json:"responsible_user"`
	User            *int   `json:"user"`
	Description     string `json:"description"`
	UTCDatetime     string `json:"utc_datetime"`
}

type File struct {
	ObjectID         int    `json:"object_id"`
	FileID           int    `json:"file_id"`
	Storage          string `json:"storage"`
	OriginalFileName string `json:"original_file_name,omitempty"`
	Base64Content    string `json:"base64_content,omitempty"`
	URL              string `json:"url,omitempty"`
}

type Comment struct {
	ObjectID    int    `json:"object_id"`
	UserID      int    `json:"user_id"`
	CommentID   int    `json:"comment_id"`
	Content     string `json:"content"`
	UTCDatetime string `json:"utc_datetime"`
}

type ObjectLogEntry struct {
	LogEntryID  int            `json:"log_entry_id"`
	Type        string         `json:"type"`
	ObjectID    int            `json:"object_id"`
	UserID      int            `json:"user_id"`
	Data        map[string]any `json:"data"`
	UTCDatetime string         `json:"utc_datetime"`
}

// Object log entry types recorded for mutations.
const (
	LogCreateObject = "CREATE_OBJECT"
	LogEditObject   = "EDIT_OBJECT"
	LogPostComment  = "POST_COMMENT"
	LogUploadFile   = "UPLOAD_FILE"
)

// Permission values accepted by the permission endpoints.
var permissionLevels = map[string]bool{
	"none":  true,
	"read":  true,
	"write": true,
	"grant": true,
}
