package messages

// TuneRequest asks the server to change a follower's spring parameters.
type TuneRequest struct {
	Follower  string
	Frequency float32
	Damping   float32
	Response  float32
}

// RetargetRequest asks the server to point a follower at another entity.
type RetargetRequest struct {
	Follower string
	Target   string
}
