package models

type (
	JobStatus         string
	JobType           string
	ExperienceLevel   string
	JobPriority       string
	RemoteType        string
	Currency          string
	SalaryPeriod      string
	SourcePlatform    string
	ContactRole       string
	InterviewType     string
	InterviewStatus   string
	HistoryAuthor     string
	ResumeType        string
	ResumeStatus      string
	ReminderType      string
	ReminderPriority  string
	ReminderStatus    string
	RecurrenceType    string
	AccountStatus     string
	SubscriptionType  string
	ReminderFrequency string
	SkillLevel        string
)

// Job application lifecycle, in pipeline order.
const (
	StatusWishlist        JobStatus = "Wishlist"
	StatusApplied         JobStatus = "Applied"
	StatusUnderReview     JobStatus = "Under Review"
	StatusPhoneScreen     JobStatus = "Phone Screen"
	StatusTechnicalTest   JobStatus = "Technical Test"
	StatusFirstInterview  JobStatus = "First Interview"
	StatusSecondInterview JobStatus = "Second Interview"
	StatusFinalInterview  JobStatus = "Final Interview"
	StatusReferenceCheck  JobStatus = "Reference Check"
	StatusOfferExtended   JobStatus = "Offer Extended"
	StatusOfferAccepted   JobStatus = "Offer Accepted"
	StatusOfferRejected   JobStatus = "Offer Rejected"
	StatusRejected        JobStatus = "Rejected"
	StatusWithdrawn       JobStatus = "Withdrawn"
	StatusOnHold          JobStatus = "On Hold"
)

var JobStatuses = []JobStatus{
	StatusWishlist, StatusApplied, StatusUnderReview, StatusPhoneScreen, StatusTechnicalTest,
	StatusFirstInterview, StatusSecondInterview, StatusFinalInterview, StatusReferenceCheck,
	StatusOfferExtended, StatusOfferAccepted, StatusOfferRejected, StatusRejected,
	StatusWithdrawn, StatusOnHold,
}

func (s JobStatus) IsValid() bool { return contains(JobStatuses, s) }

// IsTerminal reports whether no further pipeline movement is expected.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case StatusOfferAccepted, StatusOfferRejected, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// InterviewStages are the stages counted as "interviewing or further".
var InterviewStages = []JobStatus{
	StatusPhoneScreen, StatusTechnicalTest, StatusFirstInterview, StatusSecondInterview,
	StatusFinalInterview, StatusReferenceCheck, StatusOfferExtended, StatusOfferAccepted,
	StatusOfferRejected,
}

// OfferStages are the stages in which an offer was received.
var OfferStages = []JobStatus{StatusOfferExtended, StatusOfferAccepted, StatusOfferRejected}

// IsResponse reports whether the status means the employer reacted to the application.
func (s JobStatus) IsResponse() bool {
	switch s {
	case StatusWishlist, StatusApplied, StatusWithdrawn:
		return false
	}
	return s.IsValid()
}

const (
	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeContract   JobType = "Contract"
	JobTypeFreelance  JobType = "Freelance"
	JobTypeInternship JobType = "Internship"
	JobTypeTemporary  JobType = "Temporary"
)

var JobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeFreelance, JobTypeInternship, JobTypeTemporary}

func (t JobType) IsValid() bool { return contains(JobTypes, t) }

const (
	LevelEntry     ExperienceLevel = "Entry"
	LevelMid       ExperienceLevel = "Mid"
	LevelSenior    ExperienceLevel = "Senior"
	LevelLead      ExperienceLevel = "Lead"
	LevelExecutive ExperienceLevel = "Executive"
)

var ExperienceLevels = []ExperienceLevel{LevelEntry, LevelMid, LevelSenior, LevelLead, LevelExecutive}

const (
	PriorityLow      JobPriority = "Low"
	PriorityMedium   JobPriority = "Medium"
	PriorityHigh     JobPriority = "High"
	PriorityCritical JobPriority = "Critical"
)

var JobPriorities = []JobPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func (p JobPriority) IsValid() bool { return contains(JobPriorities, p) }

const (
	RemoteOnSite RemoteType = "On-site"
	RemoteFull   RemoteType = "Remote"
	RemoteHybrid RemoteType = "Hybrid"
)

var RemoteTypes = []RemoteType{RemoteOnSite, RemoteFull, RemoteHybrid}

var Currencies = []Currency{"INR", "USD", "EUR", "GBP", "CAD", "AUD"}

var SalaryPeriods = []SalaryPeriod{"Hourly", "Monthly", "Yearly"}

const (
	SourceLinkedIn SourcePlatform = "LinkedIn"
	SourceGmail    SourcePlatform = "Gmail"
	SourceOther    SourcePlatform = "Other"
)

var SourcePlatforms = []SourcePlatform{
	SourceLinkedIn, "Indeed", "Naukri", "Company Website", "Referral", "Job Fair", "Recruiter", SourceGmail, SourceOther,
}

var ContactRoles = []ContactRole{"Recruiter", "Hiring Manager", "Team Lead", "HR", "Interviewer", "Other"}

var InterviewTypes = []InterviewType{"Phone", "Video", "In-person", "Technical", "Panel", "Group"}

const (
	InterviewScheduled   InterviewStatus = "Scheduled"
	InterviewCompleted   InterviewStatus = "Completed"
	InterviewCancelled   InterviewStatus = "Cancelled"
	InterviewRescheduled InterviewStatus = "Rescheduled"
	InterviewNoShow      InterviewStatus = "No Show"
)

var InterviewStatuses = []InterviewStatus{InterviewScheduled, InterviewCompleted, InterviewCancelled, InterviewRescheduled, InterviewNoShow}

const (
	AddedByUser   HistoryAuthor = "user"
	AddedBySystem HistoryAuthor = "system"
	AddedByAI     HistoryAuthor = "ai"
)

// Resumes

const (
	ResumeMaster      ResumeType = "Master"
	ResumeTailored    ResumeType = "Tailored"
	ResumeTemplate    ResumeType = "Template"
	ResumeAIGenerated ResumeType = "AI Generated"
)

var ResumeTypes = []ResumeType{ResumeMaster, ResumeTailored, ResumeTemplate, ResumeAIGenerated}

func (t ResumeType) IsValid() bool { return contains(ResumeTypes, t) }

const (
	ResumeDraft          ResumeStatus = "Draft"
	ResumeActive         ResumeStatus = "Active"
	ResumeArchived       ResumeStatus = "Archived"
	ResumeStatusTemplate ResumeStatus = "Template"
)

var ResumeStatuses = []ResumeStatus{ResumeDraft, ResumeActive, ResumeArchived, ResumeStatusTemplate}

func (s ResumeStatus) IsValid() bool { return contains(ResumeStatuses, s) }

// Reminders

const (
	ReminderFollowUp            ReminderType = "follow_up"
	ReminderInterviewPrep       ReminderType = "interview_prep"
	ReminderApplicationDeadline ReminderType = "application_deadline"
	ReminderCustom              ReminderType = "custom"
	ReminderThankYouNote        ReminderType = "thank_you_note"
	ReminderStatusCheck         ReminderType = "status_check"
)

var ReminderTypes = []ReminderType{
	ReminderFollowUp, ReminderInterviewPrep, ReminderApplicationDeadline,
	ReminderCustom, ReminderThankYouNote, ReminderStatusCheck,
}

func (t ReminderType) IsValid() bool { return contains(ReminderTypes, t) }

const (
	ReminderPriorityLow    ReminderPriority = "low"
	ReminderPriorityMedium ReminderPriority = "medium"
	ReminderPriorityHigh   ReminderPriority = "high"
	ReminderPriorityUrgent ReminderPriority = "urgent"
)

var ReminderPriorities = []ReminderPriority{ReminderPriorityLow, ReminderPriorityMedium, ReminderPriorityHigh, ReminderPriorityUrgent}

func (p ReminderPriority) IsValid() bool { return contains(ReminderPriorities, p) }

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderCompleted ReminderStatus = "completed"
	ReminderSnoozed   ReminderStatus = "snoozed"
	ReminderCancelled ReminderStatus = "cancelled"
)

var ReminderStatuses = []ReminderStatus{ReminderPending, ReminderCompleted, ReminderSnoozed, ReminderCancelled}

func (s ReminderStatus) IsValid() bool { return contains(ReminderStatuses, s) }

func (s ReminderStatus) IsTerminal() bool {
	return s == ReminderCompleted || s == ReminderCancelled
}

const (
	RecurDaily   RecurrenceType = "daily"
	RecurWeekly  RecurrenceType = "weekly"
	RecurMonthly RecurrenceType = "monthly"
)

var RecurrenceTypes = []RecurrenceType{RecurDaily, RecurWeekly, RecurMonthly}

func (t RecurrenceType) IsValid() bool { return contains(RecurrenceTypes, t) }

// Users

const (
	AccountActive    AccountStatus = "Active"
	AccountInactive  AccountStatus = "Inactive"
	AccountSuspended AccountStatus = "Suspended"
	AccountDeleted   AccountStatus = "Deleted"
)

const (
	SubscriptionFree    SubscriptionType = "Free"
	SubscriptionBasic   SubscriptionType = "Basic"
	SubscriptionPremium SubscriptionType = "Premium"
)

var ReminderFrequencies = []ReminderFrequency{"Daily", "Weekly", "Bi-weekly", "Monthly"}

var SkillLevels = []SkillLevel{"Beginner", "Intermediate", "Advanced", "Expert"}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
