package plugin

import (
	"strings"

	"github.com/gin-gonic/gin"

	"netauto/internal/transport/http/response"
)

type Command struct {
	Name        string `json:"name"`
	Vendor      string `json:"vendor"`
	DeviceType  string `json:"device_type"`
	Command     string `json:"command"`
	Description string `json:"description"`
}

var defaultCommands = []Command{
	{Name: "Show Interfaces", Vendor: "Cisco", DeviceType: "cisco_ios", Command: "show ip interface brief", Description: "Summary of interface status and addresses"},
	{Name: "Show Running Config", Vendor: "Cisco", DeviceType: "cisco_ios", Command: "show running-config", Description: "Full active configuration"},
	{Name: "Show Interfaces Terse", Vendor: "Juniper", DeviceType: "juniper_junos", Command: "show interfaces terse", Description: "Summary of interface status"},
	{Name: "Show Interfaces", Vendor: "Arista", DeviceType: "arista_eos", Command: "show ip interface brief", Description: "Summary of interface status and addresses"},
}

// CommandLibrary serves a catalogue of common show commands.
type CommandLibrary struct {
	commands []Command
}

func NewCommandLibrary() *CommandLibrary {
	return &CommandLibrary{commands: append([]Command(nil), defaultCommands...)}
}

func (*CommandLibrary) Name() string        { return "command_library" }
func (*CommandLibrary) Description() string { return "Library of common network commands per vendor" }
func (*CommandLibrary) Version() string     { return "1.0.0" }

func (l *CommandLibrary) RegisterRoutes(r gin.IRouter) {
	r.GET("/library/commands", l.list)
}

// Commands filters by vendor or device type, case-insensitively. Empty
// filters match everything.
func (l *CommandLibrary) Commands(vendor, deviceType string) []Command {
	out := make([]Command, 0, len(l.commands))
	for _, c := range l.commands {
		if vendor != "" && !strings.EqualFold(c.Vendor, vendor) {
			continue
		}
		if deviceType != "" && !strings.EqualFold(c.DeviceType, deviceType) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (l *CommandLibrary) list(c *gin.Context) {
	cmds := l.Commands(c.Query("vendor"), c.Query("device_type"))
	response.OK(c, gin.H{"commands": cmds, "count": len(cmds)})
}
