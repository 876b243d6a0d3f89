package chat

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Permissions maps the snake_case names commands declare to permission bits.
var Permissions = map[string]int64{
	"create_instant_invite":    discordgo.PermissionCreateInstantInvite,
	"kick_members":             discordgo.PermissionKickMembers,
	"ban_members":              discordgo.PermissionBanMembers,
	"administrator":            discordgo.PermissionAdministrator,
	"manage_channels":          discordgo.PermissionManageChannels,
	"manage_guild":             discordgo.PermissionManageGuild,
	"add_reactions":            discordgo.PermissionAddReactions,
	"view_audit_log":           discordgo.PermissionViewAuditLogs,
	"view_channel":             discordgo.PermissionViewChannel,
	"read_messages":            discordgo.PermissionViewChannel,
	"send_messages":            discordgo.PermissionSendMessages,
	"send_tts_messages":        discordgo.PermissionSendTTSMessages,
	"manage_messages":          discordgo.PermissionManageMessages,
	"embed_links":              discordgo.PermissionEmbedLinks,
	"attach_files":             discordgo.PermissionAttachFiles,
	"read_message_history":     discordgo.PermissionReadMessageHistory,
	"mention_everyone":         discordgo.PermissionMentionEveryone,
	"use_external_emojis":      discordgo.PermissionUseExternalEmojis,
	"use_application_commands": discordgo.PermissionUseApplicationCommands,
	"manage_threads":           discordgo.PermissionManageThreads,
	"create_public_threads":    discordgo.PermissionCreatePublicThreads,
	"create_private_threads":   discordgo.PermissionCreatePrivateThreads,
	"send_messages_in_threads": discordgo.PermissionSendMessagesInThreads,
	"priority_speaker":         discordgo.PermissionVoicePrioritySpeaker,
	"stream":                   discordgo.PermissionVoiceStreamVideo,
	"connect":                  discordgo.PermissionVoiceConnect,
	"speak":                    discordgo.PermissionVoiceSpeak,
	"mute_members":             discordgo.PermissionVoiceMuteMembers,
	"deafen_members":           discordgo.PermissionVoiceDeafenMembers,
	"move_members":             discordgo.PermissionVoiceMoveMembers,
	"use_voice_activation":     discordgo.PermissionVoiceUseVAD,
	"change_nickname":          discordgo.PermissionChangeNickname,
	"manage_nicknames":         discordgo.PermissionManageNicknames,
	"manage_roles":             discordgo.PermissionManageRoles,
	"manage_webhooks":          discordgo.PermissionManageWebhooks,
	"manage_guild_expressions": discordgo.PermissionManageGuildExpressions,
	"manage_events":            discordgo.PermissionManageEvents,
	"view_guild_insights":      discordgo.PermissionViewGuildInsights,
	"moderate_members":         discordgo.PermissionModerateMembers,
}

// HasPermission reports whether perms holds the named permission.
// Administrator implies every permission; unknown names are never held.
func HasPermission(perms int64, name string) bool {
	bit, ok := Permissions[strings.ToLower(name)]
	if !ok {
		return false
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return perms&bit == bit
}
