package handler

import "github.com/freeeve/hexmarch/internal/service"

// HubNotifier implements service.Notifier over the WebSocket hub.
// Channel announcements go to subscribers of the configured channel;
// direct messages go to the addressed player's connections.
type HubNotifier struct {
	hub     *Hub
	channel string
}

// NewHubNotifier creates a HubNotifier announcing on the given channel.
func NewHubNotifier(hub *Hub, channel string) *HubNotifier {
	return &HubNotifier{hub: hub, channel: channel}
}

func (n *HubNotifier) Announce(text string) {
	n.hub.BroadcastToChannel(n.channel, WSEvent{
		Type:    EventAnnouncement,
		Channel: n.channel,
		Data:    map[string]string{"text": text},
	})
}

func (n *HubNotifier) DirectMessage(playerID string, notice service.Notice) {
	n.hub.BroadcastToPlayer(playerID, WSEvent{
		Type: EventNotice,
		Data: notice,
	})
}
