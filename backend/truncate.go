package backend

// truncate drops the oldest droppable message until the counted token
// load fits within tokenLimit - maxTokens, or until no drop can make
// progress. With skipSystem set, leading system messages are preserved
// and the first non-system message is dropped instead; otherwise index
// 0 is dropped unconditionally. Both policies are deliberate
// per-vendor behavior.
//
// A single remaining message is never dropped even when it alone
// exceeds the budget; the downstream vendor call is allowed to fail
// instead.
func truncate(wire []wireMessage, tokenLimit, maxTokens int, count func([]wireMessage) int, skipSystem bool) []wireMessage {
	if tokenLimit <= 0 {
		return wire
	}
	for len(wire) > 1 && count(wire) >= tokenLimit-maxTokens {
		drop := 0
		if skipSystem {
			for drop < len(wire) && wire[drop].Role == "system" {
				drop++
			}
			if drop == len(wire) {
				break
			}
		}
		wire = append(wire[:drop], wire[drop+1:]...)
	}
	return wire
}
