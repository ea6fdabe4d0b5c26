package pose

// PoseConnections is the BlazePose skeleton: 35 undirected edges over landmark ids.
var PoseConnections = []Connection{
	// face
	{0, 1}, {1, 2}, {2, 3}, {3, 7},
	{0, 4}, {4, 5}, {5, 6}, {6, 8},
	{9, 10},
	// torso
	{11, 12}, {11, 23}, {12, 24}, {23, 24},
	// left arm and hand
	{11, 13}, {13, 15}, {15, 17}, {15, 19}, {15, 21}, {17, 19},
	// right arm and hand
	{12, 14}, {14, 16}, {16, 18}, {16, 20}, {16, 22}, {18, 20},
	// left leg and foot
	{23, 25}, {25, 27}, {27, 29}, {29, 31}, {27, 31},
	// right leg and foot
	{24, 26}, {26, 28}, {28, 30}, {30, 32}, {28, 32},
}

// Connections returns a copy of PoseConnections safe for a caller to modify.
func Connections() []Connection {
	out := make([]Connection, len(PoseConnections))
	copy(out, PoseConnections)
	return out
}
