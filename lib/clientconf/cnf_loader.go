package clientconf

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/ini.v1"
)

// Find and read .my.cnf files

// mysql cnf files with possible [client] sections per: https://dev.mysql.com/doc/refman/8.0/en/option-files.html
func getCnfFiles() []string {
	var files = []string{
		`/etc/my.cnf`,
		`/etc/mysql/my.cnf`,
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homedirFiles := []string{
			fmt.Sprintf(`%s/.my.cnf`, home),
			fmt.Sprintf(`%s/.mylogin.cnf`, home),
		}
		files = append(files, homedirFiles...)
	}

	return files
}

// Initialize a cnf
func initCnf() *ini.File {
	opts := ini.LoadOptions{
		AllowBooleanKeys: true,
		Loose:            true,
	}
	cnf := ini.Empty(opts)

	// Set some basic defaults
	username := `root`
	if user, err := user.Current(); err == nil {
		username = user.Username
	}
	cnf.NewSection(`client`)
	cnf.Section(`client`).NewKey(`user`, username)

	return cnf
}

// Append each of the given files to the cnf, files that fail to parse are
// skipped and reported together.
func appendFiles(cnf *ini.File, files []string) error {
	var errs *multierror.Error

	for _, file := range files {
		// Parse into a scratch cnf first so a broken file leaves no partial keys behind
		scratch := ini.Empty(ini.LoadOptions{AllowBooleanKeys: true, Loose: true})
		if err := scratch.Append(file); err != nil {
			errs = multierror.Append(errs, fmt.Errorf(`%s: %w`, file, err))
			continue
		}
		if err := cnf.Append(file); err != nil {
			errs = multierror.Append(errs, fmt.Errorf(`%s: %w`, file, err))
		}
	}
	return errs.ErrorOrNil()
}

// Apply the tool flags to the given cnf [client] section
func (f *Flags) applyFlags(cnf *ini.File) {
	client := cnf.Section(`client`)
	set := func(key, val string) {
		if val != "" {
			client.NewKey(key, val)
		}
	}

	set(`user`, f.User)
	set(`host`, f.Host)
	set(`port`, f.Port)
	set(`socket`, f.Socket)
	set(`ssl-cert`, f.SSLCert)
	set(`ssl-key`, f.SSLKey)
	set(`ssl-ca`, f.SSLCa)

	// A host or port given on the command line wins over a cnf socket
	if f.Socket == "" && (f.Host != "" || f.Port != "") {
		client.NewKey(`protocol`, `tcp`)
	}
}

// getConfigValue looks up key, falling back to its loose- prefixed form
func getConfigValue(clientMap map[string]string, key string) (string, bool) {
	if val, ok := clientMap[key]; ok {
		return val, true
	}
	val, ok := clientMap[`loose-`+key]
	return val, ok
}

// Translate cnf to mysql.Config
func cnfToConfig(cnf *ini.File) (*mysql.Config, error) {
	config := mysql.NewConfig()
	if !cnf.HasSection(`client`) {
		return config, nil
	}

	// clientMap is all the resolved settings
	clientMap := cnf.Section(`client`).KeysHash()

	// Basic credentials
	if cnfval, ok := getConfigValue(clientMap, `user`); ok {
		config.User = cnfval
	}
	if cnfval, ok := getConfigValue(clientMap, `password`); ok {
		config.Passwd = cnfval
	}
	if _, ok := getConfigValue(clientMap, `enable-cleartext-plugin`); ok {
		config.AllowCleartextPasswords = true
	}

	// Build network info
	if socket, ok := getConfigValue(clientMap, `socket`); ok && !hostIsTCP(clientMap) {
		config.Net = `unix`
		config.Addr = socket
	} else {
		config.Net = `tcp`

		host, hostok := getConfigValue(clientMap, `host`)
		if !hostok {
			host = DefaultHost
		}

		port, portok := getConfigValue(clientMap, `port`)
		if !portok {
			port = DefaultPort
		}
		config.Addr = fmt.Sprintf("%s:%s", host, port)
	}

	// SSL Stuff
	var errs *multierror.Error

	// Handle CA
	rootCertPool := x509.NewCertPool()
	if sslca, ok := getConfigValue(clientMap, `ssl-ca`); ok {
		pem, err := os.ReadFile(sslca)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf(`ssl-ca error: %v`, err))
		} else {
			if ok := rootCertPool.AppendCertsFromPEM(pem); !ok {
				errs = multierror.Append(errs, errors.New("failed to append PEM"))
			}
		}
	}

	// Handle cert/key
	sslcert, certok := getConfigValue(clientMap, `ssl-cert`)
	sslkey, keyok := getConfigValue(clientMap, `ssl-key`)
	if (certok && !keyok) || (!certok && keyok) {
		errs = multierror.Append(errs, errors.New("need both ssl-cert and ssl-key set"))
	} else if certok && keyok {
		clientCert := make([]tls.Certificate, 0, 1)
		certs, err := tls.LoadX509KeyPair(sslcert, sslkey)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf(`ssl-cert/key error: %v`, err))
		} else {
			clientCert = append(clientCert, certs)
			mysql.RegisterTLSConfig("custom", &tls.Config{
				RootCAs:      rootCertPool,
				Certificates: clientCert,
			})
			config.TLSConfig = `custom`
		}
	}

	return config, errs.ErrorOrNil()
}

// protocol=tcp forces a network connection even when a socket is configured
func hostIsTCP(clientMap map[string]string) bool {
	if proto, ok := getConfigValue(clientMap, `protocol`); ok {
		return strings.EqualFold(proto, `tcp`)
	}
	return false
}
