package cmd

import (
	"fmt"
	"log"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/difylang/dbagent/internal/config"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage backend profiles",
	Long:  `Manage backend profiles for different agent and data-service deployments.`,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		fmt.Printf("Active Profile: %s\n\n", cfg.ActiveProfile)
		fmt.Println("Available Profiles:")
		for name, profile := range cfg.Profiles {
			marker := ""
			if name == cfg.ActiveProfile {
				marker = " (active)"
			}
			fmt.Printf("  %s%s\n", name, marker)
			fmt.Printf("    Agent URL: %s\n", profile.AgentURL)
			if profile.DataURL != "" {
				fmt.Printf("    Data URL: %s\n", profile.DataURL)
			}
			if profile.TimeoutSeconds > 0 {
				fmt.Printf("    Timeout: %ds\n", profile.TimeoutSeconds)
			}
			fmt.Println()
		}
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show [profile-name]",
	Short: "Show profile details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName := args[0]
		profile, exists := cfg.Profiles[profileName]
		if !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		fmt.Printf("Profile: %s\n", profileName)
		fmt.Printf("Agent URL: %s\n", profile.AgentURL)
		fmt.Printf("Data URL: %s\n", profile.DataURL)
		fmt.Printf("Timeout: %ds\n", profile.TimeoutSeconds)
	},
}

var addProfileCmd = &cobra.Command{
	Use:   "add [profile-name]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		var profileName string
		if len(args) > 0 {
			profileName = args[0]
		} else {
			prompt := promptui.Prompt{
				Label: "Profile name",
			}
			profileName, err = prompt.Run()
			if err != nil {
				log.Fatalf("Prompt failed: %v", err)
			}
		}

		if _, exists := cfg.Profiles[profileName]; exists {
			log.Fatalf("Profile '%s' already exists", profileName)
		}

		profile, err := promptProfile(config.Profile{})
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}

		cfg.Profiles[profileName] = profile

		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' added successfully!\n", profileName)
	},
}

var editProfileCmd = &cobra.Command{
	Use:   "edit [profile-name]",
	Short: "Edit an existing profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		var profileName string
		if len(args) > 0 {
			profileName = args[0]
		} else {
			profileNames := make([]string, 0, len(cfg.Profiles))
			for name := range cfg.Profiles {
				profileNames = append(profileNames, name)
			}

			if len(profileNames) == 0 {
				log.Fatalf("No profiles available to edit")
			}

			prompt := promptui.Select{
				Label: "Select profile to edit",
				Items: profileNames,
			}
			_, profileName, err = prompt.Run()
			if err != nil {
				log.Fatalf("Selection failed: %v", err)
			}
		}

		existing, exists := cfg.Profiles[profileName]
		if !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		profile, err := promptProfile(existing)
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}

		cfg.Profiles[profileName] = profile

		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' updated successfully!\n", profileName)
	},
}

func promptProfile(defaults config.Profile) (config.Profile, error) {
	var profile config.Profile
	var err error

	agentPrompt := promptui.Prompt{
		Label:   "Agent URL",
		Default: defaults.AgentURL,
	}
	profile.AgentURL, err = agentPrompt.Run()
	if err != nil {
		return profile, err
	}

	dataPrompt := promptui.Prompt{
		Label:   "Data service URL",
		Default: defaults.DataURL,
	}
	profile.DataURL, err = dataPrompt.Run()
	if err != nil {
		return profile, err
	}

	timeoutDefault := ""
	if defaults.TimeoutSeconds > 0 {
		timeoutDefault = strconv.Itoa(defaults.TimeoutSeconds)
	}
	timeoutPrompt := promptui.Prompt{
		Label:   "Request timeout in seconds (optional)",
		Default: timeoutDefault,
	}
	timeoutStr, err := timeoutPrompt.Run()
	if err != nil {
		return profile, err
	}
	if timeoutStr != "" {
		if seconds, convErr := strconv.Atoi(timeoutStr); convErr == nil && seconds > 0 {
			profile.TimeoutSeconds = seconds
		}
	}

	return profile, nil
}

func init() {
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(addProfileCmd)
	profileCmd.AddCommand(editProfileCmd)
}
