package kernel

import "github.com/google/uuid"

type AccountID string

func NewAccountID() AccountID      { return AccountID(uuid.NewString()) }
func (a AccountID) String() string { return string(a) }
func (a AccountID) IsEmpty() bool  { return string(a) == "" }

type ResumeID string

func NewResumeID() ResumeID       { return ResumeID(uuid.NewString()) }
func (r ResumeID) String() string { return string(r) }
func (r ResumeID) IsEmpty() bool  { return string(r) == "" }

type PostingID string

func NewPostingID() PostingID      { return PostingID(uuid.NewString()) }
func (p PostingID) String() string { return string(p) }
func (p PostingID) IsEmpty() bool  { return string(p) == "" }

type ApplicationID string

func NewApplicationID() ApplicationID  { return ApplicationID(uuid.NewString()) }
func (a ApplicationID) String() string { return string(a) }
func (a ApplicationID) IsEmpty() bool  { return string(a) == "" }

type MatchID string

func NewMatchID() MatchID        { return MatchID(uuid.NewString()) }
func (m MatchID) String() string { return string(m) }
func (m MatchID) IsEmpty() bool  { return string(m) == "" }

// JobID identifies a queued background job.
type JobID string

func NewJobID() JobID          { return JobID(uuid.NewString()) }
func (j JobID) String() string { return string(j) }
func (j JobID) IsEmpty() bool  { return string(j) == "" }

type Email string

func (e Email) String() string { return string(e) }
func (e Email) IsEmpty() bool  { return string(e) == "" }
