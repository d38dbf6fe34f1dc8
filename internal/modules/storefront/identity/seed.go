package identity

import "github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"

// demoPassword is shared by every seeded account.
const demoPassword = "duke@2025"

// SeedUsers is the CRM export used by the static directory.
func SeedUsers() []domain.DirectoryUser {
	return []domain.DirectoryUser{
		// Platinum
		{MerchantUserID: "DUKE-USR-1001", Email: "arjun@example.test", Phone: "+919876543210", FirstName: "Arjun", LastName: "Sharma", LoyaltyTier: domain.TierPlatinum, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1002", Email: "priya@example.test", Phone: "+919845001234", FirstName: "Priya", LastName: "Nair", LoyaltyTier: domain.TierPlatinum, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1003", Email: "raj@example.test", Phone: "+919000000001", FirstName: "Raj", LastName: "Kumar", LoyaltyTier: domain.TierPlatinum, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1004", Email: "divya@example.test", Phone: "+919000000002", FirstName: "Divya", LastName: "Menon", LoyaltyTier: domain.TierPlatinum, Password: demoPassword},

		// Gold
		{MerchantUserID: "DUKE-USR-1005", Email: "sneha@example.test", Phone: "+917654321098", FirstName: "Sneha", LastName: "Iyer", LoyaltyTier: domain.TierGold, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1006", Email: "vikram@example.test", Phone: "+916543210987", FirstName: "Vikram", LastName: "Singh", LoyaltyTier: domain.TierGold, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1007", Email: "meena@example.test", Phone: "+919900112233", FirstName: "Meena", LastName: "Reddy", LoyaltyTier: domain.TierGold, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1008", Email: "karan@example.test", Phone: "+919811223344", FirstName: "Karan", LastName: "Mehta", LoyaltyTier: domain.TierGold, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1009", Email: "ananya@example.test", Phone: "+919722334455", FirstName: "Ananya", LastName: "Bose", LoyaltyTier: domain.TierGold, Password: demoPassword},

		// Silver
		{MerchantUserID: "DUKE-USR-1010", Email: "rahul@example.test", Phone: "+918765432109", FirstName: "Rahul", LastName: "Verma", LoyaltyTier: domain.TierSilver, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1011", Email: "kavya@example.test", Phone: "+918633445566", FirstName: "Kavya", LastName: "Pillai", LoyaltyTier: domain.TierSilver, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1012", Email: "rohit@example.test", Phone: "+918544556677", FirstName: "Rohit", LastName: "Joshi", LoyaltyTier: domain.TierSilver, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1013", Email: "pooja@example.test", Phone: "+918455667788", FirstName: "Pooja", LastName: "Tiwari", LoyaltyTier: domain.TierSilver, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1014", Email: "aditya@example.test", Phone: "+918366778899", FirstName: "Aditya", LastName: "Rao", LoyaltyTier: domain.TierSilver, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1015", Email: "nisha@example.test", Phone: "+918277889900", FirstName: "Nisha", LastName: "Kapoor", LoyaltyTier: domain.TierSilver, Password: demoPassword},

		// Bronze
		{MerchantUserID: "DUKE-USR-1016", Email: "suresh@example.test", Phone: "+917188990011", FirstName: "Suresh", LastName: "Patil", LoyaltyTier: domain.TierBronze, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1017", Email: "anita@example.test", Phone: "+917000000003", FirstName: "Anita", LastName: "Das", LoyaltyTier: domain.TierBronze, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1018", Email: "manish@example.test", Phone: "+917000000004", FirstName: "Manish", LastName: "Gupta", LoyaltyTier: domain.TierBronze, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1019", Email: "lakshmi@example.test", Phone: "+917000000005", FirstName: "Lakshmi", LastName: "Krishnan", LoyaltyTier: domain.TierBronze, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1020", Email: "deepak@example.test", Phone: "+917000000006", FirstName: "Deepak", LastName: "Malhotra", LoyaltyTier: domain.TierBronze, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1021", Email: "sunita@example.test", Phone: "+917000000007", FirstName: "Sunita", LastName: "Choudhury", LoyaltyTier: domain.TierBronze, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1022", Email: "nikhil@example.test", Phone: "+917000000008", FirstName: "Nikhil", LastName: "Bansal", LoyaltyTier: domain.TierBronze, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1023", Email: "rekha@example.test", Phone: "+917000000009", FirstName: "Rekha", LastName: "Srinivas", LoyaltyTier: domain.TierBronze, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1024", Email: "tarun@example.test", Phone: "+917000000010", FirstName: "Tarun", LastName: "Saxena", LoyaltyTier: domain.TierBronze, Password: demoPassword},
		{MerchantUserID: "DUKE-USR-1025", Email: "geeta@example.test", Phone: "+917000000011", FirstName: "Geeta", LastName: "Pandey", LoyaltyTier: domain.TierBronze, Password: demoPassword},
	}
}
