package pikudo_api_client

const (
	// Device and session
	DeviceRegisterEndpoint = "/api/device/register"
	MeEndpoint             = "/api/me"
	AppVersionEndpoint     = "/api/pikudo/app/version"

	// Rooms
	RoomCreateEndpoint        = "/api/rooms/create"
	RoomJoinEndpoint          = "/api/rooms/join"
	RoomLeaveEndpoint         = "/api/rooms/leave"
	RoomLeaveTransferEndpoint = "/api/rooms/leave-transfer"
	RoomCloseEndpoint         = "/api/rooms/close"
	RoomEndEndpoint           = "/api/rooms/end"
	RoomStartEndpoint         = "/api/rooms/start"
	RoomRoundsEndpoint        = "/api/rooms/rounds"
	RoomInfoEndpoint          = "/api/rooms/info"
	RoomMeEndpoint            = "/api/rooms/me"
	RoomPlayersEndpoint       = "/api/rooms/players"
	RoomOwnerEndpoint         = "/api/rooms/owner"

	// Game
	ChallengesEndpoint      = "/api/challenges"
	ChallengeDeleteEndpoint = "/api/challenges/delete"
	CompleteEndpoint        = "/api/complete"
	LeaderboardEndpoint     = "/api/leaderboard"
	UploadEndpoint          = "/api/upload"

	// Final summary
	FinalSummaryEndpoint    = "/api/final/summary"
	FinalPlayersEndpoint    = "/api/final/players"
	FinalChallengesEndpoint = "/api/final/challenges"
	FinalPlayerEndpoint     = "/api/final/player"
	FinalChallengeEndpoint  = "/api/final/challenge"
)
