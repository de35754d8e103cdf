package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/kazi/core/org"
	"github.com/trezcool/kazi/core/report"
	"github.com/trezcool/kazi/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db        *sql.DB
	orgRepo   org.Repository
	usrRepo   user.Repository
	reportSvc report.ServiceInterface
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate [COMMAND] - run database migrations (default: up)")
	fmt.Println("  addorg -name NAME -slug SLUG - create an organisation")
	fmt.Println("  adduser -org SLUG -name NAME -email EMAIL [-username USERNAME] [-admin] - update or create a user")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset user's password")
	fmt.Println("  senddaily - email yesterday's daily report to all active users")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addOrgCmd := flag.NewFlagSet("addorg", flag.ExitOnError)
	addOrgName := addOrgCmd.String("name", "", "The organisation's name.")
	addOrgSlug := addOrgCmd.String("slug", "", "The organisation's unique slug.")
	addOrgTz := addOrgCmd.String("timezone", "UTC", "The organisation's IANA timezone.")

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserOrg := addUserCmd.String("org", "", "The slug of the user's organisation.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserIsAdmin := addUserCmd.Bool("admin", false, "Grant the user all roles.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		return cli.migrate(args[2:])
	case "addorg":
		if err := addOrgCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addOrgName == "" || *addOrgSlug == "" {
			addOrgCmd.Usage()
			return errHelp
		}
		return cli.addOrg(*addOrgName, *addOrgSlug, *addOrgTz)
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserOrg == "" || *addUserName == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			addUserCmd.Usage()
			return err
		}
		return cli.addUser(*addUserOrg, *addUserName, *addUserUname, *addUserEmail, pwd, *addUserIsAdmin)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			resetPasswordCmd.Usage()
			return err
		}
		return cli.resetPassword(*resetPasswordUname, pwd)
	case "senddaily":
		return cli.sendDaily()
	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errHelp
	}
	return string(pwd), nil
}
