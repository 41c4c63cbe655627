package persistence

import (
	"encoding/json"
	"time"
)

type (

	//VideoFile keeps uploaded video metadata
	VideoFile struct {
		ID         string    `json:"id"`
		FileName   string    `json:"fileName"`
		FileSize   int64     `json:"fileSize"`
		MimeType   string    `json:"mimeType"`
		Duration   int       `json:"duration"`
		URL        string    `json:"url"`
		UploadedAt time.Time `json:"uploadedAt"`
	}

	//Segment is a part of transcription
	Segment struct {
		Text       string  `json:"text"`
		StartTime  float64 `json:"startTime"`
		EndTime    float64 `json:"endTime"`
		Confidence float64 `json:"confidence"`
		Speaker    string  `json:"speaker,omitempty"`
	}

	//Transcription result
	Transcription struct {
		ID         string    `json:"id"`
		Language   string    `json:"language"`
		Confidence float64   `json:"confidence"`
		Duration   float64   `json:"duration"`
		Segments   []Segment `json:"segments"`
	}

	//Frame is an extracted key frame
	Frame struct {
		ID          string   `json:"id"`
		Timestamp   float64  `json:"timestamp"`
		Name        string   `json:"name"`
		Description string   `json:"description,omitempty"`
		Importance  int      `json:"importance"`
		Tags        []string `json:"tags,omitempty"`
	}

	//Section is a document outline part
	Section struct {
		Title     string  `json:"title"`
		Content   string  `json:"content"`
		StartTime float64 `json:"startTime,omitempty"`
		EndTime   float64 `json:"endTime,omitempty"`
		Order     int     `json:"order"`
	}

	//Analysis keeps content analysis
	Analysis struct {
		DocumentType   string    `json:"documentType"`
		Topics         []string  `json:"topics"`
		KeyPoints      []string  `json:"keyPoints"`
		Summary        string    `json:"summary"`
		Outline        []Section `json:"outline"`
		Complexity     string    `json:"complexity"`
		TargetAudience []string  `json:"targetAudience"`
		ReadMinutes    int       `json:"estimatedReadTime"`
	}

	//Document is a generated document
	Document struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		Sections  []Section `json:"content"`
		Author    string    `json:"author"`
		WordCount int       `json:"wordCount"`
		Tags      []string  `json:"tags"`
		Category  string    `json:"category"`
		Version   string    `json:"version"`
		FileName  string    `json:"fileName,omitempty"`
		Created   time.Time `json:"createdAt"`
	}

	//Job is a video processing job
	Job struct {
		ID            string         `json:"id"`
		ProjectID     string         `json:"projectId"`
		UserID        string         `json:"userId"`
		Email         string         `json:"email,omitempty"`
		Video         VideoFile      `json:"video"`
		Status        string         `json:"status"`
		Progress      int            `json:"progress"`
		CurrentStep   string         `json:"currentStep"`
		Error         string         `json:"error,omitempty"`
		Transcription *Transcription `json:"transcription,omitempty"`
		Frames        []Frame        `json:"frames,omitempty"`
		Analysis      *Analysis      `json:"analysis,omitempty"`
		Document      *Document      `json:"generatedDocument,omitempty"`
		Created       time.Time      `json:"createdAt"`
		Started       *time.Time     `json:"startedAt,omitempty"`
		Completed     *time.Time     `json:"completedAt,omitempty"`
	}

	//Quote table
	Quote struct {
		ID             string    `json:"quoteId"`
		WordCount      int       `json:"wordCount"`
		SourceLanguage string    `json:"sourceLanguage"`
		TargetLanguage string    `json:"targetLanguage"`
		DocumentType   string    `json:"documentType"`
		Complexity     string    `json:"complexity"`
		Tier           string    `json:"tier"`
		BaseRate       float64   `json:"baseRate"`
		LanguageMult   float64   `json:"languageMultiplier"`
		ComplexityMult float64   `json:"complexityMultiplier"`
		TypeMult       float64   `json:"typeMultiplier"`
		TotalPrice     int64     `json:"totalPrice"`
		Currency       string    `json:"currency"`
		TurnaroundDays int       `json:"turnaroundDays"`
		Name           string    `json:"name"`
		Email          string    `json:"email"`
		Company        string    `json:"company,omitempty"`
		Requirements   string    `json:"requirements,omitempty"`
		Status         string    `json:"status"`
		Created        time.Time `json:"createdAt"`
		ValidUntil     time.Time `json:"validUntil"`
	}

	//Lead table - contact inquiries
	Lead struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Email       string    `json:"email"`
		Company     string    `json:"company,omitempty"`
		Phone       string    `json:"phone,omitempty"`
		ProjectType string    `json:"projectType,omitempty"`
		Message     string    `json:"message"`
		Budget      string    `json:"budget,omitempty"`
		Timeline    string    `json:"timeline,omitempty"`
		Status      string    `json:"status"`
		Priority    string    `json:"priority"`
		Source      string    `json:"source,omitempty"`
		Notes       string    `json:"notes,omitempty"`
		AssignedTo  string    `json:"assignedTo,omitempty"`
		IPAddress   string    `json:"ipAddress,omitempty"`
		UserAgent   string    `json:"userAgent,omitempty"`
		Created     time.Time `json:"createdAt"`
		Updated     time.Time `json:"updatedAt"`
	}

	//LeadFilter for lead listing
	LeadFilter struct {
		Status   string
		Priority string
		Search   string
		Page     int
		Limit    int
	}

	//LeadUpdate keeps changeable lead fields, nil means no change
	LeadUpdate struct {
		Status     *string `json:"status"`
		Priority   *string `json:"priority"`
		Notes      *string `json:"notes"`
		AssignedTo *string `json:"assignedTo"`
	}

	//Subscriber table - newsletter
	Subscriber struct {
		ID                string     `json:"id"`
		Email             string     `json:"email"`
		Consent           bool       `json:"consent"`
		Source            string     `json:"source"`
		Confirmed         bool       `json:"confirmed"`
		ConfirmationToken string     `json:"-"`
		UnsubscribeToken  string     `json:"-"`
		IPAddress         string     `json:"ipAddress,omitempty"`
		UserAgent         string     `json:"userAgent,omitempty"`
		Subscribed        time.Time  `json:"subscribedAt"`
		ConfirmedAt       *time.Time `json:"confirmedAt,omitempty"`
		Unsubscribed      *time.Time `json:"unsubscribedAt,omitempty"`
	}

	//SubscriberStats summary
	SubscriberStats struct {
		Total        int `json:"total"`
		Confirmed    int `json:"confirmed"`
		Pending      int `json:"pending"`
		Unsubscribed int `json:"unsubscribed"`
	}

	//User table
	User struct {
		ID           string     `json:"id"`
		Email        string     `json:"email"`
		Name         string     `json:"name"`
		PasswordHash string     `json:"-"`
		Role         string     `json:"role"`
		Active       bool       `json:"active"`
		Created      time.Time  `json:"createdAt"`
		LastLogin    *time.Time `json:"lastLoginAt,omitempty"`
	}

	//Project table - client project requests
	Project struct {
		ID          string     `json:"id"`
		UserID      string     `json:"userId"`
		Title       string     `json:"title"`
		Description string     `json:"description"`
		ServiceType string     `json:"serviceType"`
		WordCount   int        `json:"wordCount,omitempty"`
		Deadline    *time.Time `json:"deadline,omitempty"`
		Budget      string     `json:"budget,omitempty"`
		Status      string     `json:"status"`
		Created     time.Time  `json:"createdAt"`
	}

	//AuditEvent table
	AuditEvent struct {
		ID        string          `json:"id"`
		EventType string          `json:"eventType"`
		UserID    string          `json:"userId,omitempty"`
		Resource  string          `json:"resource,omitempty"`
		Action    string          `json:"action,omitempty"`
		Details   json.RawMessage `json:"details,omitempty"`
		IPAddress string          `json:"ipAddress,omitempty"`
		Created   time.Time       `json:"createdAt"`
	}

	//AuditFilter for audit listing
	AuditFilter struct {
		EventType string
		UserID    string
		From      time.Time
		To        time.Time
		Limit     int
	}
)
