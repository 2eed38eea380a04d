/*
Clrserver starts a clrviz server and begins listening for new connections.

Usage:

	clrserver [flags]
	clrserver [flags] -l [[ADDRESS]:PORT]

Once started, the clrviz server will listen for HTTP requests and respond to
them using REST protocol. By default, it will listen on localhost:8080. This can
be changed with the --listen/-l flag (or config via environment var). The flag
argument must be either a full address with port, such as "192.168.0.2:6001", or
just the IP address preceeded by a colon, such as ":6001".

Every setting is taken from, in order of precedence, its flag, its environment
variable, the config file given with --config, and finally its default.

If a JWT token secret is not given, one will be automatically generated. As a
consequence, in this mode of operation all tokens are rendered invalid as soon
as the server shuts down. This is suitable for testing, but must be given via
either CLI flags, environment variable, or config file if running in
production.

The flags are:

	-v, --version
		Give the current version of the clrviz server and then exit.

	-c, --config FILE
		Read settings from the given TOML file. The keys it may contain are
		listen, db, token_secret, admin_password, unauth_delay_ms,
		conflict_policy, and cache_size.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, will default to the value of environment variable
		CLRVIZ_LISTEN_ADDRESS, and if that is not given, will default to
		localhost:8080.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing JWT tokens. If there are less than
		32 bytes in the secret, it will be repeated until it is. The maximum
		size is 64 bytes. If not given, will default to the value of environment
		variable CLRVIZ_TOKEN_SECRET. If no secret is specified or an empty
		secret is given, a random secret will be automatically generated.

	--db DRIVER[:PARAMS]
		Use the given DB connection string. DRIVER must be one of the following:
		inmem, sqlite. inmem has no further params. sqlite needs the path to the
		data directory such as sqlite:path/to/db_dir. If not given, will default
		to the value of environment variable CLRVIZ_DATABASE. If no DB driver
		is specified or an empty one is given, an in-memory database is
		automatically selected.

	--admin-password PASSWORD
		Allow logging in as admin with the given password. Only the admin can
		delete stored grammars. If not given, will default to the value of
		environment variable CLRVIZ_ADMIN_PASSWORD. If no password is specified,
		admin login is disabled.

	--policy POLICY
		Set the conflict policy used for requests that do not give one. POLICY
		must be one of resolve, reject-rr, or reject-all. Defaults to resolve.
*/
package main

import (
	"crypto/rand"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dekarrin/clrviz/internal/parse"
	"github.com/dekarrin/clrviz/internal/version"
	"github.com/dekarrin/clrviz/server"
	"github.com/spf13/pflag"
)

const (
	EnvListen   = "CLRVIZ_LISTEN_ADDRESS"
	EnvSecret   = "CLRVIZ_TOKEN_SECRET"
	EnvDB       = "CLRVIZ_DATABASE"
	EnvPassword = "CLRVIZ_ADMIN_PASSWORD"
)

var (
	flagVersion  = pflag.BoolP("version", "v", false, "Give the current version of clrviz server and then exit.")
	flagConfig   = pflag.StringP("config", "c", "", "Read settings from the given TOML file.")
	flagListen   = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret   = pflag.StringP("secret", "s", "", "Use the given secret for token generation.")
	flagDB       = pflag.String("db", "", "Use the given DB connection string.")
	flagPassword = pflag.String("admin-password", "", "Allow admin login with the given password.")
	flagPolicy   = pflag.String("policy", "", "Default conflict policy: resolve, reject-rr, or reject-all.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (clrviz v%s)\n", version.ServerCurrent, version.Current)
		return
	}

	args := pflag.Args()

	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(1)
	}

	// assemble a server config, starting from the file if there is one
	var cfg server.Config
	if *flagConfig != "" {
		var err error
		cfg, err = server.LoadConfigFile(*flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not load config: %s\n", err.Error())
			os.Exit(1)
		}
	}

	// get address info
	if listenAddr := setting("listen", flagListen, EnvListen); listenAddr != "" {
		if !strings.Contains(listenAddr, ":") {
			fmt.Fprintf(os.Stderr, "Listen address is not in ADDRESS:PORT or :PORT format.\nDo -h for help.\n")
			os.Exit(1)
		}
		cfg.Listen = listenAddr
	}

	// look at db connection string
	if dbConnStr := setting("db", flagDB, EnvDB); dbConnStr != "" {
		db, err := server.ParseDBConnString(dbConnStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err.Error())
			os.Exit(1)
		}
		cfg.DB = db
	}

	if pw := setting("admin-password", flagPassword, EnvPassword); pw != "" {
		cfg.AdminPassword = pw
	}
	if cfg.AdminPassword == "" {
		log.Printf("WARN  No admin password set; admin login is disabled")
	}

	if pflag.Lookup("policy").Changed {
		policy, err := parse.ParseConflictPolicy(*flagPolicy)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err.Error())
			os.Exit(1)
		}
		cfg.DefaultPolicy = policy
	}

	// get token secret
	if tokSecStr := setting("secret", flagSecret, EnvSecret); tokSecStr != "" {
		cfg.TokenSecret = []byte(tokSecStr)
	}
	// was the secret given?
	if len(cfg.TokenSecret) > 0 {
		tokSecret := cfg.TokenSecret

		for len(tokSecret) < server.MinSecretSize {
			doubledTokSecret := make([]byte, len(tokSecret)*2)
			copy(doubledTokSecret, tokSecret)
			copy(doubledTokSecret[len(tokSecret):], tokSecret)
			tokSecret = doubledTokSecret
		}

		if len(tokSecret) > server.MaxSecretSize {
			// keys would be chopped at 64, so rather than the user thinking
			// they have more security by giving a longer key, refuse to start.
			fmt.Fprintf(os.Stderr, "Token secret is %d bytes, but it must be <= %d bytes\nDo -h for help.\n", len(tokSecret), server.MaxSecretSize)
			os.Exit(1)
		}
		cfg.TokenSecret = tokSecret
	} else {
		// use all 64 possible bytes if doing a generated secret
		cfg.TokenSecret = make([]byte, server.MaxSecretSize)
		_, err := rand.Read(cfg.TokenSecret)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not generate token secret: %s\n", err.Error())
			os.Exit(1)
		}

		// yell at the user bc they should know their secret might be bad
		log.Printf("WARN  Using generated token secret; all tokens issued will become invalid at shutdown")
	}

	// configuration complete, initialize the server
	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("FATAL could not start server: %s", err.Error())
	}
	defer srv.Close()
	log.Printf("DEBUG Server initialized")

	// okay, now actually launch it
	log.Printf("INFO  Starting clrviz server %s...", version.ServerCurrent)
	if err := srv.ServeForever(); err != nil {
		log.Printf("FATAL %v", err)
		srv.Close()
		os.Exit(1)
	}
}

// setting gives the value of a setting from its flag if the flag was given,
// otherwise from its environment variable.
func setting(flagName string, flagVal *string, envVar string) string {
	if pflag.Lookup(flagName).Changed {
		return *flagVal
	}
	return os.Getenv(envVar)
}
