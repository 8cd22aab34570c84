package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"pnodewatch/models"
)

// DiscordBotService posts alert embeds to a configured channel. With no
// token or channel it stays disabled and every send is rejected.
type DiscordBotService struct {
	session   *discordgo.Session
	channelID string
	botID     string
	enabled   bool
}

func NewDiscordBotService(token, channelID string) (*DiscordBotService, error) {
	if token == "" || channelID == "" {
		log.Println("Discord bot token or channel not provided, Discord notifications disabled")
		return &DiscordBotService{enabled: false}, nil
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	user, err := session.User("@me")
	if err != nil {
		return nil, fmt.Errorf("failed to get bot user: %w", err)
	}

	bot := &DiscordBotService{
		session:   session,
		channelID: channelID,
		botID:     user.ID,
		enabled:   true,
	}

	session.AddHandler(bot.messageHandler)

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("failed to open Discord connection: %w", err)
	}

	log.Printf("Discord bot connected successfully! Bot ID: %s, Channel: %s", user.ID, channelID)
	return bot, nil
}

func (d *DiscordBotService) Enabled() bool {
	return d != nil && d.enabled
}

func (d *DiscordBotService) Close() {
	if d != nil && d.enabled && d.session != nil {
		log.Println("Closing Discord bot connection...")
		d.session.Close()
	}
}

func (d *DiscordBotService) messageHandler(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == d.botID || m.ChannelID != d.channelID {
		return
	}

	if strings.HasPrefix(m.Content, "!pnode") {
		args := strings.Fields(m.Content)
		if len(args) < 2 {
			return
		}

		switch args[1] {
		case "ping":
			s.ChannelMessageSend(m.ChannelID, "Pong! pNode monitor is online.")
		case "help":
			helpMsg := "**pNode Monitor Commands:**\n" +
				"`!pnode ping` - Check if bot is online\n" +
				"`!pnode help` - Show this help message"
			s.ChannelMessageSend(m.ChannelID, helpMsg)
		default:
			s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Unknown command: `%s`. Try `!pnode help`", args[1]))
		}
	}
}

// SendAlert posts one alert embed.
func (d *DiscordBotService) SendAlert(alert *models.Alert) error {
	if d == nil || !d.enabled {
		return fmt.Errorf("Discord bot not enabled")
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🚨 %s on %s", alert.Type, alert.NodeID),
		Description: alert.Message,
		Color:       severityColor(alert.Severity),
		Timestamp:   alert.CreatedAt.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Node", Value: alert.NodeID, Inline: true},
			{Name: "Severity", Value: alert.Severity, Inline: true},
			{Name: "State", Value: alert.State, Inline: true},
		},
	}

	if _, err := d.session.ChannelMessageSendEmbed(d.channelID, embed); err != nil {
		return fmt.Errorf("failed to send Discord message: %w", err)
	}

	log.Printf("Alert sent to Discord: %s/%s", alert.NodeID, alert.Type)
	return nil
}

func severityColor(severity string) int {
	switch severity {
	case models.SeverityCritical:
		return 0xe74c3c // red
	case models.SeverityHigh:
		return 0xe67e22 // orange
	case models.SeverityMedium:
		return 0xf1c40f // yellow
	default:
		return 0x3498db // blue
	}
}
