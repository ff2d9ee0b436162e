package surface

// Regions is every display region and chart slot of the dashboard.
var Regions = []string{
	"currentTime",

	// dashboard
	"totalTrains", "activeTrains", "passengerLoad", "punctuality",
	"statusList", "weatherInfo", "incidentsList", "systemOverviewChart",

	// route map
	"routeMap", "stationsContainer", "trainsContainer", "stationDetails",

	// fleet
	"fleetGrid", "trainDetailsModal", "trainModalTitle", "trainModalBody",

	// depot
	"depotCapacityChart", "bayLayout", "staffInfo", "operationsList",

	// maintenance
	"maintenanceSchedule", "priorityQueue", "crewAssignments", "healthTrendsChart",

	// simulation
	"affectedAsset", "resultsContent", "runSimulation", "scenarioDuration",

	// analytics
	"passengerFlowChart", "serviceFrequencyChart", "punctualityChart", "kpiList",
}
