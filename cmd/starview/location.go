package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"

	"github.com/Faultbox/starview/internal/nav/pose"
	"github.com/Faultbox/starview/internal/nav/urlstate"
)

var encodeState = pose.DefaultState()

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "Convert between camera poses and location strings",
}

var decodeCmd = &cobra.Command{
	Use:   "decode <url-or-query>",
	Short: "Print the camera pose stored in a location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := queryOf(args[0])
		if err != nil {
			return err
		}
		return printPose(cmd.OutOrStdout(), urlstate.Decode(query))
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Print the location string for a camera pose",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		p := pose.New()
		p.Apply(encodeState)
		fmt.Fprintf(cmd.OutOrStdout(), "?%s\n", urlstate.Encode(p.Snapshot()))
	},
}

func init() {
	f := encodeCmd.Flags()
	f.Float64Var(&encodeState.Position[0], "px", encodeState.Position[0], "Camera x")
	f.Float64Var(&encodeState.Position[1], "py", encodeState.Position[1], "Camera y")
	f.Float64Var(&encodeState.Position[2], "pz", encodeState.Position[2], "Camera z")
	f.Float64Var(&encodeState.Yaw, "yaw", encodeState.Yaw, "Yaw in radians")
	f.Float64Var(&encodeState.Pitch, "pitch", encodeState.Pitch, "Pitch in radians, clamped to ±π/2")
	f.Float64Var(&encodeState.FOV, "fov", encodeState.FOV, "Field of view in degrees, clamped to [1, 125]")

	locationCmd.AddCommand(decodeCmd, encodeCmd)
	rootCmd.AddCommand(locationCmd)
}

// queryOf accepts a full URL, a query with or without '?', or a state file
// line.
func queryOf(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if !strings.Contains(arg, "://") {
		return arg, nil
	}
	u, err := url.Parse(arg)
	if err != nil {
		return "", fmt.Errorf("parsing location: %w", err)
	}
	return u.RawQuery, nil
}

func printPose(w io.Writer, s *pose.State) error {
	if s == nil {
		return errors.New("location holds no camera pose")
	}
	p := pose.New()
	p.Apply(*s)
	fwd := p.Forward()

	fmt.Fprintf(w, "Position: (%.2f, %.2f, %.2f)\n", s.Position.X(), s.Position.Y(), s.Position.Z())
	fmt.Fprintf(w, "Yaw:      %.4f rad (%.2f°)\n", p.Yaw(), mgl64.RadToDeg(p.Yaw()))
	fmt.Fprintf(w, "Pitch:    %.4f rad (%.2f°)\n", p.Pitch(), mgl64.RadToDeg(p.Pitch()))
	fmt.Fprintf(w, "FOV:      %.2f°\n", p.FieldOfView())
	fmt.Fprintf(w, "Forward:  (%.4f, %.4f, %.4f)\n", fwd.X(), fwd.Y(), fwd.Z())
	return nil
}
