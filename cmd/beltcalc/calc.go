package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/beltcalc/beltcalc/pkg/capacity"
	"github.com/beltcalc/beltcalc/pkg/client"
	"github.com/beltcalc/beltcalc/pkg/config"
	"github.com/beltcalc/beltcalc/pkg/types"
)

var apiClient = client.NewClient(unixSocketPath)

// calcFlags are shared by every calculation command. Not every command
// registers every flag.
type calcFlags struct {
	width     float64
	trough    string
	surcharge string
	speed     float64
	density   float64
	json      bool
	remote    bool
}

func (f *calcFlags) addAngles(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.trough, "trough", "", `idler trough angle, as a number or a label such as "35°" or "0° (flat)" (default: configured default angle)`)
	flags.StringVar(&f.surcharge, "surcharge", "", `material surcharge angle, as a number or a label such as "20°" (default: configured default angle)`)
}

func (f *calcFlags) addWidth(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&f.width, "width", "w", 0, "belt width in mm")
	_ = cmd.MarkFlagRequired("width")
}

func (f *calcFlags) addMaterial(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Float64VarP(&f.speed, "speed", "v", 0, "belt speed in m/s")
	flags.Float64VarP(&f.density, "density", "d", 0, "bulk density in t/m³")
	_ = cmd.MarkFlagRequired("speed")
	_ = cmd.MarkFlagRequired("density")
}

func (f *calcFlags) addOutput(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolVar(&f.json, "json", false, "print the result as JSON")
	flags.BoolVar(&f.remote, "remote", false, "calculate in the running daemon instead of in-process")
}

func (f *calcFlags) troughLabel() capacity.AngleLabel {
	return capacity.LabelText(f.trough)
}

func (f *calcFlags) surchargeLabel() capacity.AngleLabel {
	return capacity.LabelText(f.surcharge)
}

func (f *calcFlags) material() capacity.Material {
	return capacity.Material{SpeedMPS: f.speed, DensityTPM3: f.density}
}

func (f *calcFlags) geometryRequest() types.GeometryRequest {
	return types.GeometryRequest{
		WidthMM:   f.width,
		Trough:    f.troughLabel(),
		Surcharge: f.surchargeLabel(),
	}
}

// localEngine builds an engine from the config file, so in-process results
// honour the same default angle as the daemon.
func localEngine() (*capacity.Engine, config.Config, error) {
	conf, err := config.NewFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	e := capacity.NewEngine(
		capacity.WithLogger(logrus.StandardLogger()),
		capacity.WithTrace(conf.Trace()),
		capacity.WithDefaultAngle(conf.DefaultAngle()),
	)
	return e, conf, nil
}

// resolveAngle parses label and warns when a non-empty label was not understood.
func resolveAngle(e *capacity.Engine, name string, label capacity.AngleLabel) float64 {
	deg, ok := e.ParseAngle(label)
	if !ok && label.String() != "" {
		logrus.Warnf("%s angle %q not recognised, using the default of %v°", name, label.String(), deg)
	}
	return deg
}

func NewAngleCommand() *cobra.Command {
	f := &calcFlags{}
	cmd := &cobra.Command{
		Use:     "angle [label]",
		Short:   "Parse an angle label into degrees",
		GroupID: gCalculation,
		Long: `Parse an angle label into degrees.

Labels are free text as shown in selection lists, for example "20° (xx)",
"35°" or "0° (flat)". Labels that cannot be read resolve to the configured
default angle.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := capacity.LabelText(args[0])

			var resp types.AngleResponse
			if f.remote {
				r, err := apiClient.ParseAngle(label)
				if err != nil {
					return err
				}
				resp = *r
			} else {
				e, _, err := localEngine()
				if err != nil {
					return err
				}
				resp.Degrees, resp.Recognised = e.ParseAngle(label)
			}

			if f.json {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			cmd.Printf("Angle: %s\n", bold("%v°", resp.Degrees))
			cmd.Printf("Recognised: %s\n", bool2Text(resp.Recognised))
			return nil
		},
	}
	f.addOutput(cmd)
	return cmd
}

func NewKFactorCommand() *cobra.Command {
	f := &calcFlags{}
	cmd := &cobra.Command{
		Use:     "k-factor",
		Short:   "Look up the cross-section shape factor",
		GroupID: gCalculation,
		Long: `Look up the cross-section shape factor.

The factor is interpolated from the reference table: bilinearly for troughed
belts, and along the surcharge angle only for flat belts (trough below 5°).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp types.KFactorResponse
			if f.remote {
				r, err := apiClient.KFactor(types.KFactorRequest{
					Trough:    f.troughLabel(),
					Surcharge: f.surchargeLabel(),
				})
				if err != nil {
					return err
				}
				resp = *r
			} else {
				e, _, err := localEngine()
				if err != nil {
					return err
				}
				resp.TroughDeg = resolveAngle(e, "trough", f.troughLabel())
				resp.SurchargeDeg = resolveAngle(e, "surcharge", f.surchargeLabel())
				resp.Flat = capacity.IsFlat(resp.TroughDeg)
				resp.K = e.KFactor(resp.TroughDeg, resp.SurchargeDeg)
			}

			if f.json {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			cmd.Printf("Trough: %s  Surcharge: %s\n", bold("%v°", resp.TroughDeg), bold("%v°", resp.SurchargeDeg))
			cmd.Printf("Flat belt: %s\n", bool2Text(resp.Flat))
			cmd.Printf("k: %s\n", bold("%.4f", resp.K))
			return nil
		},
	}
	f.addAngles(cmd)
	f.addOutput(cmd)
	return cmd
}

func NewAreaCommand() *cobra.Command {
	f := &calcFlags{}
	cmd := &cobra.Command{
		Use:     "area",
		Short:   "Calculate the material cross-section area",
		GroupID: gCalculation,
		Long: `Calculate the material cross-section area.

The area is k × (0.9 × B − 0.05)², with B the belt width in meters. Flat
belts use 80% of the belt width as the effective width instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp types.CrossSectionResponse
			if f.remote {
				r, err := apiClient.CrossSection(f.geometryRequest())
				if err != nil {
					return err
				}
				resp = *r
			} else {
				e, _, err := localEngine()
				if err != nil {
					return err
				}
				resp.Geometry = capacity.Geometry{
					WidthMM:      f.width,
					TroughDeg:    resolveAngle(e, "trough", f.troughLabel()),
					SurchargeDeg: resolveAngle(e, "surcharge", f.surchargeLabel()),
				}
				resp.CrossSection = e.CrossSection(resp.Geometry)
			}

			if f.json {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			printGeometry(cmd, resp.Geometry)
			printCrossSection(cmd, resp.CrossSection)
			return nil
		},
	}
	f.addWidth(cmd)
	f.addAngles(cmd)
	f.addOutput(cmd)
	return cmd
}

func NewCapacityCommand() *cobra.Command {
	f := &calcFlags{}
	cmd := &cobra.Command{
		Use:     "capacity",
		Short:   "Calculate the conveying capacity in t/h",
		GroupID: gCalculation,
		Long: `Calculate the conveying capacity in t/h.

Capacity is 3600 × A × v × ρ, with A the cross-section area in m², v the belt
speed in m/s and ρ the bulk density in t/m³.`,
		Example: `  beltcalc capacity --width 600 --trough "20° (xx)" --surcharge 20 --speed 2 --density 1.6`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp types.CapacityResponse
			if f.remote {
				r, err := apiClient.Capacity(types.CapacityRequest{
					GeometryRequest: f.geometryRequest(),
					SpeedMPS:        f.speed,
					DensityTPM3:     f.density,
				})
				if err != nil {
					return err
				}
				resp = *r
			} else {
				e, _, err := localEngine()
				if err != nil {
					return err
				}
				resp.Geometry = capacity.Geometry{
					WidthMM:      f.width,
					TroughDeg:    resolveAngle(e, "trough", f.troughLabel()),
					SurchargeDeg: resolveAngle(e, "surcharge", f.surchargeLabel()),
				}
				resp.Material = f.material()
				resp.CrossSection, resp.Result = e.Evaluate(resp.Geometry, resp.Material)
			}

			if f.json {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			printGeometry(cmd, resp.Geometry)
			printCrossSection(cmd, resp.CrossSection)
			printResult(cmd, resp.Result)
			return nil
		},
	}
	f.addWidth(cmd)
	f.addAngles(cmd)
	f.addMaterial(cmd)
	f.addOutput(cmd)
	return cmd
}

func NewSizeCommand() *cobra.Command {
	f := &calcFlags{}
	var widths []float64
	cmd := &cobra.Command{
		Use:     "size [target t/h]",
		Short:   "Select the narrowest belt width reaching a target capacity",
		GroupID: gCalculation,
		Long: `Select the narrowest belt width reaching a target capacity.

Candidate widths come from --widths, or from the configured standard width
series. When no candidate is wide enough, the widest one is reported and
marked insufficient.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseFloatArg(args, "target capacity")
			if err != nil {
				return err
			}
			if target <= 0 {
				return fmt.Errorf("target capacity must be positive, got %v", target)
			}

			var resp types.SizeResponse
			if f.remote {
				r, err := apiClient.Size(types.SizeRequest{
					Trough:      f.troughLabel(),
					Surcharge:   f.surchargeLabel(),
					SpeedMPS:    f.speed,
					DensityTPM3: f.density,
					TargetTPH:   target,
					Widths:      widths,
				})
				if err != nil {
					return err
				}
				resp = *r
			} else {
				e, conf, err := localEngine()
				if err != nil {
					return err
				}
				candidates := widths
				if len(candidates) == 0 {
					candidates = conf.StandardWidths()
				}
				resp.TroughDeg = resolveAngle(e, "trough", f.troughLabel())
				resp.SurchargeDeg = resolveAngle(e, "surcharge", f.surchargeLabel())
				resp.Selection = e.SelectWidth(target, resp.TroughDeg, resp.SurchargeDeg, f.material(), candidates)
			}

			if f.json {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			sel := resp.Selection
			cmd.Printf("Belt width: %s\n", bold("%v mm", sel.WidthMM))
			cmd.Printf("Sufficient: %s\n", bool2Text(sel.Sufficient))
			cmd.Printf("Utilisation: %s\n", bold("%.1f%%", sel.Utilisation*100))
			printResult(cmd, sel.Result)
			return nil
		},
	}
	f.addAngles(cmd)
	f.addMaterial(cmd)
	cmd.Flags().Float64SliceVar(&widths, "widths", nil, "candidate belt widths in mm (default: configured standard widths)")
	f.addOutput(cmd)
	return cmd
}

func printGeometry(cmd *cobra.Command, g capacity.Geometry) {
	cmd.Println(bold("Geometry:"))
	cmd.Printf("  Belt width: %s\n", bold("%v mm", g.WidthMM))
	cmd.Printf("  Trough angle: %s\n", bold("%v°", g.TroughDeg))
	cmd.Printf("  Surcharge angle: %s\n", bold("%v°", g.SurchargeDeg))
}

func printCrossSection(cmd *cobra.Command, cs capacity.CrossSection) {
	cmd.Println(bold("Cross section:"))
	cmd.Printf("  Flat belt: %s\n", bool2Text(cs.Flat))
	cmd.Printf("  k: %s\n", bold("%.4f", cs.K))
	cmd.Printf("  Effective width: %s\n", bold("%.3f m", cs.EffectiveWidthM))
	cmd.Printf("  Area: %s\n", bold("%.6f m²", cs.AreaM2))
}

func printResult(cmd *cobra.Command, res capacity.CapacityResult) {
	cmd.Println(bold("Capacity:"))
	cmd.Printf("  Volume flow: %s\n", bold("%.2f m³/h", res.VolumeFlowM3H))
	cmd.Printf("  Mass flow: %s\n", bold("%.2f t/h", res.MassFlowTPH))
	if res.Fallback {
		cmd.Printf("  %s\n", color.YellowString("cross section was degenerate; an approximate area of %.6f m² was used", res.AreaM2))
	}
}
