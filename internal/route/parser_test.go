package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routingTableOutput = `Route Flags: R - relay, D - download to fib
------------------------------------------------------------------------------
Routing Table : Public
Summary Count : 1

Destination/Mask        Proto  Pre Cost      Flags NextHop         Interface

61.133.137.0/24         IBGP   255 0          RD   61.133.137.1    GigabitEthernet1/0/0`

func TestParseRouteMapsPositionalFields(t *testing.T) {
	rec := ParseRoute(routingTableOutput)

	require.NotNil(t, rec)
	assert.Equal(t, "61.133.137.0/24", rec.Destination)
	assert.Equal(t, "IBGP", rec.Protocol)
	assert.Equal(t, "RD", rec.Flag)
	assert.Equal(t, "61.133.137.1", rec.NextHop)
	assert.Equal(t, "GigabitEthernet1/0/0", rec.Interface)
}

func TestParseRouteNoHeader(t *testing.T) {
	output := `Info: The route does not exist.`
	assert.Nil(t, ParseRoute(output))
}

func TestParseRouteEmptyOutput(t *testing.T) {
	assert.Nil(t, ParseRoute(""))
}

func TestParseRouteSkipsShortRows(t *testing.T) {
	// 表头后列数不足的行要跳过，取第一条完整的数据行
	output := `Destination/Mask        Proto  Pre Cost      Flags NextHop         Interface
incomplete row here
124.64.0.0/10           Static 60  0          D    124.64.0.1      Vlanif100`

	rec := ParseRoute(output)

	require.NotNil(t, rec)
	assert.Equal(t, "Static", rec.Protocol)
	assert.Equal(t, "D", rec.Flag)
	assert.Equal(t, "124.64.0.1", rec.NextHop)
	assert.Equal(t, "Vlanif100", rec.Interface)
}

func TestParseRouteFirstRowWins(t *testing.T) {
	// 不做多路由聚合，只取第一条命中的数据行
	output := `Destination/Mask        Proto  Pre Cost      Flags NextHop         Interface
1.1.1.0/24              IBGP   255 0          RD   61.133.137.1    GigabitEthernet1/0/0
1.1.1.0/24              IBGP   255 0          RD   61.133.137.2    GigabitEthernet2/0/0`

	rec := ParseRoute(output)

	require.NotNil(t, rec)
	assert.Equal(t, "61.133.137.1", rec.NextHop)
}

func TestParseRouteHeaderNeedsBothColumns(t *testing.T) {
	// 只有其中一个列名不算表头
	output := `Destination/Mask only header
1.1.1.0/24              IBGP   255 0          RD   61.133.137.1    GE1/0/0`

	assert.Nil(t, ParseRoute(output))
}
