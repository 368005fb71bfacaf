package instance

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/networktocode/schema-enforcer/internal/inventory"
	"github.com/networktocode/schema-enforcer/internal/schema"
	"github.com/networktocode/schema-enforcer/internal/validation"
)

// ValidateHosts validates every host from the provider. hostFilter, when
// non-empty, limits the run to the named host. Unlike data files, a host
// declaring an unknown schema id is fatal: host declarations are curated and
// a typo there must not silently pass.
func ValidateHosts(provider inventory.HostProvider, schemas *schema.Manager, hostFilter string, logger *slog.Logger) ([]validation.Result, error) {
	hosts, err := provider.Hosts()
	if err != nil {
		return nil, err
	}

	var results []validation.Result
	for _, host := range hosts {
		if hostFilter != "" && host.Name != hostFilter {
			continue
		}
		hostResults, err := validateHost(host, schemas)
		if err != nil {
			return nil, err
		}
		results = append(results, hostResults...)
	}
	return results, nil
}

func validateHost(host inventory.Host, schemas *schema.Manager) ([]validation.Result, error) {
	if err := schemas.ValidateSchemasExist(host.Schemas); err != nil {
		return nil, fmt.Errorf("host %s: %w", host.Name, err)
	}

	var results []validation.Result
	if host.Strict {
		if len(host.Schemas) != 1 {
			return nil, &StrictHostSchemaCountError{Host: host.Name, Count: len(host.Schemas)}
		}
		v, _ := schemas.Get(host.Schemas[0])
		strictResults, err := v.Validate(host.Vars, true)
		if err != nil {
			return nil, err
		}
		for i := range strictResults {
			strictResults[i].Strict = true
		}
		results = strictResults
	} else {
		for _, id := range hostSchemaIDs(host, schemas) {
			v, _ := schemas.Get(id)
			idResults, err := v.Validate(hostData(host, v), false)
			if err != nil {
				return nil, err
			}
			results = append(results, idResults...)
		}
	}

	annotated := validation.Annotate(results, validation.InstanceTypeHost, host.Name, host.Location)
	for i := range annotated {
		annotated[i].InstanceHostname = host.Name
	}
	return annotated, nil
}

// hostSchemaIDs resolves the schemas applicable to a host: the declared ids
// when any exist, otherwise - with automapping on - every schema whose
// top-level properties intersect the host's variables.
func hostSchemaIDs(host inventory.Host, schemas *schema.Manager) []string {
	if len(host.Schemas) > 0 {
		return host.Schemas
	}
	if !host.Automap {
		return nil
	}

	props := schema.PropertySet{}
	for k := range host.Vars {
		props.Add(k)
	}
	var ids []string
	for _, id := range schemas.IDs() {
		v, _ := schemas.Get(id)
		if v.TopLevelProperties().Intersects(props) {
			ids = append(ids, id)
		}
	}
	return ids
}

// hostData builds the instance a schema sees for a host: only the variables
// the schema declares at its top level. A variable the host does not define
// is omitted rather than set to null, so a schema's required clause reports
// it as missing.
func hostData(host inventory.Host, v schema.Validator) map[string]any {
	data := map[string]any{}
	for prop := range v.TopLevelProperties() {
		if value, ok := host.Vars[prop]; ok {
			data[prop] = value
		}
	}
	return data
}

// ShowHostChecks writes a table of every host and the schema ids it will be
// checked against.
func ShowHostChecks(w io.Writer, provider inventory.HostProvider, schemas *schema.Manager) error {
	hosts, err := provider.Hosts()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 4, ' ', 0)
	fmt.Fprintln(tw, "Host\tSchema ID")
	fmt.Fprintln(tw, "----\t---------")
	for _, host := range hosts {
		ids := hostSchemaIDs(host, schemas)
		fmt.Fprintf(tw, "%s\t%s\n", host.Name, strings.Join(ids, ", "))
	}
	return tw.Flush()
}
